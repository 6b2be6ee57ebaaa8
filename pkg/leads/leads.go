// Package leads models business-lead records and wraps the remote
// business-leads endpoints.
package leads

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Status is a lead's workflow state. The authoritative set is the current
// server contract.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusAccepted   Status = "Accepted"
	StatusIncomplete Status = "Incomplete"
)

// Statuses lists every valid lead status.
var Statuses = []Status{StatusPending, StatusAccepted, StatusIncomplete}

// BusinessTypes are the selectable business categories.
var BusinessTypes = []string{
	"Technology", "Manufacturing", "Retail", "Healthcare", "Finance",
	"Education", "Consulting", "Software", "Food Pantry", "Tax Preparer", "Other",
}

// DataSources are the selectable source-of-data options.
var DataSources = []string{
	"Website Contact Form", "Trade Show", "Referral", "Email Campaign",
	"Cold Call", "Google Search", "LinkedIn", "Yelp", "Yellow Page",
	"BBB (Better Business Bureau)", "Chamber of Commerce", "Other",
}

// Owner is the user a lead belongs to.
type Owner struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Lead is a single business-lead record as the server returns it.
type Lead struct {
	ID            int    `json:"id"`
	BusinessName  string `json:"business_name"`
	BusinessType  string `json:"business_type"`
	BusinessEmail string `json:"business_email,omitempty"`
	BusinessPhone string `json:"business_phone,omitempty"`
	WebsiteURL    string `json:"website_url,omitempty"`
	Location      string `json:"location,omitempty"`
	SourceOfData  string `json:"source_of_data,omitempty"`
	Status        Status `json:"status"`
	Note          string `json:"note,omitempty"`
	CreatedAt     string `json:"created_at"`
	User          Owner  `json:"user"`
}

// Draft is a lead submission before it has been accepted by the server.
type Draft struct {
	BusinessName  string `json:"business_name"`
	BusinessType  string `json:"business_type"`
	BusinessEmail string `json:"business_email,omitempty"`
	BusinessPhone string `json:"business_phone,omitempty"`
	WebsiteURL    string `json:"website_url,omitempty"`
	Location      string `json:"location,omitempty"`
	SourceOfData  string `json:"source_of_data,omitempty"`
	Status        Status `json:"status"`
	Note          string `json:"note,omitempty"`
	UserID        int    `json:"user_id"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a draft before any network call is made. It returns one
// message per failing field; an empty map means the draft may be submitted.
func Validate(d Draft) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(d.BusinessName) == "" {
		errs["business_name"] = "Business name is required"
	}
	if strings.TrimSpace(d.BusinessType) == "" {
		errs["business_type"] = "Business type is required"
	}
	if d.Status == "" {
		errs["status"] = "Status is required"
	} else if !validStatus(d.Status) {
		errs["status"] = "Invalid status"
	}
	if d.BusinessEmail != "" && !emailRe.MatchString(d.BusinessEmail) {
		errs["business_email"] = "Please enter a valid email address"
	}
	if d.WebsiteURL != "" && !strings.HasPrefix(d.WebsiteURL, "http://") && !strings.HasPrefix(d.WebsiteURL, "https://") {
		errs["website_url"] = "Please enter a valid URL starting with http:// or https://"
	}
	return errs
}

func validStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func decodeLeads(raw []byte) ([]Lead, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []Lead
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
