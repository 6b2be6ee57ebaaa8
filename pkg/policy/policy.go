// Package policy maps a principal's role (and subscription state) to the UI
// surfaces it may see. Everything here is a pure function of the principal's
// attributes so it can be tested without any network access.
package policy

import "github.com/desklago/leadhub/pkg/session"

// Destination is a navigable section of the dashboard.
type Destination string

const (
	DestDashboard       Destination = "dashboard"
	DestSubmitEntry     Destination = "submit-entry"
	DestViewSubmissions Destination = "view-submissions"
	DestTasks           Destination = "tasks"
	DestUsers           Destination = "users"
	DestRegister        Destination = "register"
)

// AllDestinations lists every routable destination, in menu order.
var AllDestinations = []Destination{
	DestDashboard,
	DestSubmitEntry,
	DestViewSubmissions,
	DestTasks,
	DestUsers,
	DestRegister,
}

// NavigationFor returns the ordered destinations visible to a role.
func NavigationFor(role session.Role) []Destination {
	var nav []Destination
	for _, dest := range AllDestinations {
		if Allowed(role, dest) {
			nav = append(nav, dest)
		}
	}
	return nav
}

// Allowed reports whether a role may reach a destination. The route guard
// and the navigation menu both derive from this, so a hidden link can never
// be reached by direct navigation.
func Allowed(role session.Role, dest Destination) bool {
	switch dest {
	case DestDashboard, DestViewSubmissions:
		return true
	case DestSubmitEntry:
		return role != session.RoleClient
	case DestTasks:
		switch role {
		case session.RoleSuperadmin, session.RoleAdmin, session.RoleLeader, session.RoleMember:
			return true
		}
		return false
	case DestUsers, DestRegister:
		return role == session.RoleSuperadmin
	}
	return false
}

// Decision is the routing outcome for an attempted navigation.
type Decision int

const (
	// Allow lets the navigation proceed.
	Allow Decision = iota
	// RedirectDashboard sends an authenticated but unauthorized user back
	// to the dashboard root.
	RedirectDashboard
	// RedirectLogin sends an unauthenticated user to the login screen.
	RedirectLogin
)

// GuardRoute enforces the navigation rules at the routing boundary.
// authenticated=false wins over everything except the login route itself.
func GuardRoute(principal *session.Principal, dest Destination) Decision {
	if principal == nil {
		return RedirectLogin
	}
	if Allowed(principal.Role, dest) {
		return Allow
	}
	return RedirectDashboard
}

// Column identifies a submissions-table column.
type Column string

const (
	ColBusinessInfo Column = "business_info"
	ColContact      Column = "contact"
	ColStatus       Column = "status"
	ColCreatedBy    Column = "created_by"
	ColDate         Column = "date"
	ColActions      Column = "actions"
)

// ColumnsFor returns the ordered submissions-list columns for a principal.
// Clients see contact details only while subscribed, and never get the
// edit/delete actions column.
func ColumnsFor(role session.Role, subscribed bool) []Column {
	if role == session.RoleClient {
		cols := []Column{ColBusinessInfo}
		if subscribed {
			cols = append(cols, ColContact)
		}
		return append(cols, ColStatus, ColCreatedBy, ColDate)
	}
	return []Column{ColBusinessInfo, ColContact, ColStatus, ColCreatedBy, ColDate, ColActions}
}

// HasColumn reports whether a column is rendered for the given principal.
func HasColumn(role session.Role, subscribed bool, col Column) bool {
	for _, c := range ColumnsFor(role, subscribed) {
		if c == col {
			return true
		}
	}
	return false
}
