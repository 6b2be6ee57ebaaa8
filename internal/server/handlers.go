package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/desklago/leadhub/pkg/leads"
	"github.com/desklago/leadhub/pkg/listquery"
	"github.com/desklago/leadhub/pkg/policy"
	"github.com/desklago/leadhub/pkg/session"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal := s.Session.Current()
	if principal == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(principal)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	principal := s.Session.Current()
	if principal == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"sections": policy.NavigationFor(principal.Role),
		"columns":  policy.ColumnsFor(principal.Role, principal.Subscribed),
	})
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	principal := s.Session.Current()
	if principal == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	// Map the query string onto the list state machine, same contract as
	// the CLI list command.
	q := r.URL.Query()
	filters := listquery.Filters{
		Search:       q.Get("search"),
		BusinessType: q.Get("business_type"),
		Status:       q.Get("status"),
		Location:     q.Get("location"),
		FromDate:     q.Get("from_date"),
		ToDate:       q.Get("to_date"),
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	query := leads.NewQuery(principal, s.Leads,
		listquery.WithFilters[leads.Lead](filters),
		listquery.WithPage[leads.Lead](page),
		listquery.WithPerPage[leads.Lead](perPage),
	)
	if err := query.Refetch(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"data":       query.Rows(),
		"pagination": query.Pagination(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	principal := s.Session.Current()
	if principal == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	if principal.Role == session.RoleSuperadmin {
		stats, err := s.Leads.Count(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(stats)
		return
	}

	count, err := s.Leads.CountForUser(r.Context(), principal.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"lead_count": count})
}
