package leads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/listquery"
	"github.com/desklago/leadhub/pkg/session"
)

func TestValidateRequiredFields(t *testing.T) {
	errs := Validate(Draft{})
	if errs["business_name"] != "Business name is required" {
		t.Errorf("business_name error = %q", errs["business_name"])
	}
	if errs["business_type"] == "" {
		t.Error("missing business_type must be rejected")
	}
	if errs["status"] == "" {
		t.Error("missing status must be rejected")
	}
}

func TestValidateOptionalFields(t *testing.T) {
	base := Draft{BusinessName: "Acme", BusinessType: "Retail", Status: StatusPending}

	if errs := Validate(base); len(errs) != 0 {
		t.Fatalf("valid draft rejected: %v", errs)
	}

	bad := base
	bad.BusinessEmail = "not-an-email"
	if errs := Validate(bad); errs["business_email"] == "" {
		t.Error("malformed email accepted")
	}

	bad = base
	bad.WebsiteURL = "acme.example"
	if errs := Validate(bad); errs["website_url"] == "" {
		t.Error("website without scheme accepted")
	}
	bad.WebsiteURL = "https://acme.example"
	if errs := Validate(bad); errs["website_url"] != "" {
		t.Error("https website rejected")
	}

	bad = base
	bad.Status = "Interested"
	if errs := Validate(bad); errs["status"] == "" {
		t.Error("retired status value accepted")
	}
}

func TestInvalidDraftMakesNoRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()
	svc := NewService(api.New(srv.URL))

	fieldErrs, err := svc.Submit(context.Background(), Draft{BusinessName: ""})
	if err != nil {
		t.Fatal(err)
	}
	if fieldErrs["business_name"] != "Business name is required" {
		t.Errorf("field errors = %v", fieldErrs)
	}
	if requests != 0 {
		t.Errorf("%d requests sent for an invalid draft", requests)
	}
}

func TestListForwardsFiltersAndPagination(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":[{"id":1,"business_name":"Acme","business_type":"Retail","status":"Pending","created_at":"2025-01-02","user":{"id":7,"name":"Ada"}}],"pagination":{"current_page":2,"total_rows":35}}`))
	}))
	defer srv.Close()
	svc := NewService(api.New(srv.URL))

	page, err := svc.List(context.Background(), listquery.Params{
		Page:    2,
		PerPage: 10,
		Filters: listquery.Filters{Search: "acme", Status: "Pending"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/business-leads" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery.Get("page") != "2" || gotQuery.Get("per_page") != "10" {
		t.Errorf("pagination params not forwarded: %v", gotQuery)
	}
	if gotQuery.Get("search") != "acme" || gotQuery.Get("status") != "Pending" {
		t.Errorf("filters not forwarded: %v", gotQuery)
	}
	if gotQuery.Has("location") || gotQuery.Has("business_type") {
		t.Errorf("empty filters must not be sent: %v", gotQuery)
	}

	if page.CurrentPage != 2 || page.TotalItems != 35 {
		t.Errorf("pagination metadata wrong: %+v", page)
	}
	if len(page.Rows) != 1 || page.Rows[0].BusinessName != "Acme" {
		t.Errorf("rows decoded wrong: %+v", page.Rows)
	}
}

func TestListScopedPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":[],"pagination":{"current_page":1,"total_rows":0}}`))
	}))
	defer srv.Close()
	svc := NewService(api.New(srv.URL))

	if _, err := svc.List(context.Background(), listquery.Params{Page: 1, PerPage: 10, UserID: 42}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/business-leads/42" {
		t.Errorf("scoped path = %q, want /business-leads/42", gotPath)
	}
}

func TestQueryScopesLeaderRequests(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		// The server leaks a foreign row; the client must drop it.
		w.Write([]byte(`{"data":[
			{"id":1,"business_name":"Mine","business_type":"Retail","status":"Pending","created_at":"2025-01-02","user":{"id":42,"name":"Leader"}},
			{"id":2,"business_name":"NotMine","business_type":"Retail","status":"Pending","created_at":"2025-01-02","user":{"id":9,"name":"Other"}}
		],"pagination":{"current_page":1,"total_rows":2}}`))
	}))
	defer srv.Close()

	leader := &session.Principal{ID: 42, Role: session.RoleLeader}
	query := NewQuery(leader, NewService(api.New(srv.URL)))
	if err := query.Refetch(context.Background()); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/business-leads/42" {
		t.Errorf("leader fetch not scoped: %q", gotPath)
	}
	rows := query.Rows()
	if len(rows) != 1 || rows[0].User.ID != 42 {
		t.Errorf("foreign rows rendered for leader: %+v", rows)
	}
}

func TestCountEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/business-leads/leads/count":
			w.Write([]byte(`{"total_leads":120,"data":{"Pending":50,"Accepted":40,"Incomplete":30}}`))
		case "/business-leads/count/7":
			w.Write([]byte(`{"lead_count":12}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()
	svc := NewService(api.New(srv.URL))

	stats, err := svc.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLeads != 120 || stats.ByStatus["Accepted"] != 40 {
		t.Errorf("stats decoded wrong: %+v", stats)
	}

	count, err := svc.CountForUser(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if count != 12 {
		t.Errorf("user count = %d", count)
	}
}
