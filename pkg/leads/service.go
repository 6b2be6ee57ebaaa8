package leads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/desklago/leadhub/pkg/api"
	"github.com/desklago/leadhub/pkg/listquery"
	"github.com/desklago/leadhub/pkg/session"
)

// Service wraps the business-leads endpoints behind the gateway.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches one server-filtered, server-paginated page of leads. All
// filtering happens on the server; the non-empty filter criteria are always
// forwarded as query parameters.
func (s *Service) List(ctx context.Context, p listquery.Params) (listquery.Page[Lead], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	for k, v := range p.Filters.Values() {
		q.Set(k, v)
	}

	path := "/business-leads"
	if p.UserID > 0 {
		path += "/" + strconv.Itoa(p.UserID)
	}

	body, err := s.client.DoQuery(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return listquery.Page[Lead]{}, err
	}

	rows, err := decodeLeads([]byte(gjson.GetBytes(body, "data").Raw))
	if err != nil {
		return listquery.Page[Lead]{}, fmt.Errorf("malformed leads payload: %w", err)
	}
	return listquery.Page[Lead]{
		Rows:        rows,
		CurrentPage: int(gjson.GetBytes(body, "pagination.current_page").Int()),
		TotalItems:  int(gjson.GetBytes(body, "pagination.total_rows").Int()),
	}, nil
}

// Create submits a new lead. The draft must pass Validate first; the server
// revalidates and may still answer with field errors.
func (s *Service) Create(ctx context.Context, d Draft) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/business-leads", d)
	return err
}

// Submit validates a draft and, only when it passes, creates the lead. Field
// errors from client-side validation come back without any request going out.
func (s *Service) Submit(ctx context.Context, d Draft) (map[string]string, error) {
	if errs := Validate(d); len(errs) > 0 {
		return errs, nil
	}
	return nil, s.Create(ctx, d)
}

// Update replaces a lead in full.
func (s *Service) Update(ctx context.Context, id int, d Draft) error {
	_, err := s.client.Do(ctx, http.MethodPut, "/business-leads/"+strconv.Itoa(id), d)
	return err
}

// Delete removes a lead.
func (s *Service) Delete(ctx context.Context, id int) error {
	_, err := s.client.Do(ctx, http.MethodDelete, "/business-leads/"+strconv.Itoa(id), nil)
	return err
}

// Upload bulk-imports leads from a csv/xls/xlsx file.
func (s *Service) Upload(ctx context.Context, filePath string) error {
	_, err := s.client.DoMultipart(ctx, "/business-leads/leads/upload", nil, api.File{Field: "file", Path: filePath})
	return err
}

// Stats is the dashboard count payload.
type Stats struct {
	TotalLeads int
	ByStatus   map[string]int
}

// Count fetches the global lead counts (superadmin dashboard).
func (s *Service) Count(ctx context.Context) (Stats, error) {
	body, err := s.client.Do(ctx, http.MethodGet, "/business-leads/leads/count", nil)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		TotalLeads: int(gjson.GetBytes(body, "total_leads").Int()),
		ByStatus:   map[string]int{},
	}
	gjson.GetBytes(body, "data").ForEach(func(key, value gjson.Result) bool {
		stats.ByStatus[key.Str] = int(value.Int())
		return true
	})
	return stats, nil
}

// CountForUser fetches one user's lead count (every non-superadmin dashboard).
func (s *Service) CountForUser(ctx context.Context, userID int) (int, error) {
	body, err := s.client.Do(ctx, http.MethodGet, "/business-leads/count/"+strconv.Itoa(userID), nil)
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(body, "lead_count").Int()), nil
}

// NewQuery builds the submissions list state machine for a principal, wired
// to this service with ownership defense for leader/member roles.
func NewQuery(principal *session.Principal, s *Service, opts ...listquery.Option[Lead]) *listquery.Query[Lead] {
	opts = append([]listquery.Option[Lead]{
		listquery.WithOwner[Lead](func(l Lead) int { return l.User.ID }),
	}, opts...)
	return listquery.New(principal, s.List, opts...)
}
