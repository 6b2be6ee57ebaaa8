// Package listquery is the filter/pagination/fetch contract shared by every
// list view. Filters are always forwarded to the server as query parameters;
// the machine only ever holds what the server returned for the current
// page/filter combination, plus the bookkeeping needed to discard stale
// responses and to keep the last good page on screen through an error.
package listquery

import (
	"context"
	"sync"

	"github.com/desklago/leadhub/pkg/session"
)

// DefaultPerPage matches the server's default page size.
const DefaultPerPage = 10

// Filters is the user-entered filter criteria. Empty string means "not set";
// only non-empty values are sent to the server.
type Filters struct {
	Search       string
	BusinessType string
	Status       string
	Location     string
	FromDate     string
	ToDate       string
}

// FilterKey names a single filter field for SetFilter.
type FilterKey string

const (
	FilterSearch       FilterKey = "search"
	FilterBusinessType FilterKey = "business_type"
	FilterStatus       FilterKey = "status"
	FilterLocation     FilterKey = "location"
	FilterFromDate     FilterKey = "from_date"
	FilterToDate       FilterKey = "to_date"
)

// Values returns the non-empty filters as wire parameter name/value pairs.
func (f Filters) Values() map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{
		"search":        f.Search,
		"business_type": f.BusinessType,
		"status":        f.Status,
		"location":      f.Location,
		"from_date":     f.FromDate,
		"to_date":       f.ToDate,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (f *Filters) set(key FilterKey, value string) {
	switch key {
	case FilterSearch:
		f.Search = value
	case FilterBusinessType:
		f.BusinessType = value
	case FilterStatus:
		f.Status = value
	case FilterLocation:
		f.Location = value
	case FilterFromDate:
		f.FromDate = value
	case FilterToDate:
		f.ToDate = value
	}
}

// Pagination mirrors the server's pagination metadata. TotalPages is derived
// from TotalItems, never from the number of rows the client happens to hold.
type Pagination struct {
	CurrentPage int
	PerPage     int
	TotalPages  int
	TotalItems  int
}

// Params is what a Fetcher receives for one request.
type Params struct {
	Page    int
	PerPage int
	Filters Filters
	// UserID scopes the request to one owner's records. Set automatically
	// for leader/member principals.
	UserID int
}

// Page is one server response worth of rows plus its pagination metadata.
type Page[T any] struct {
	Rows        []T
	CurrentPage int
	TotalItems  int
}

// Fetcher issues the actual request for a page of records.
type Fetcher[T any] func(ctx context.Context, p Params) (Page[T], error)

// Query is the list state machine. One instance lives per mounted list view.
type Query[T any] struct {
	mu sync.Mutex

	fetch     Fetcher[T]
	principal *session.Principal
	// ownedBy extracts a record's owner id for the client-side ownership
	// defense filter. Nil disables the filter.
	ownedBy func(T) int

	filters    Filters
	pagination Pagination
	rows       []T
	loading    bool
	lastErr    error

	// generation guards against out-of-order response delivery: only the
	// response matching the latest issued request may touch state.
	generation uint64

	listeners []func()
}

// Option configures a Query.
type Option[T any] func(*Query[T])

// WithPerPage overrides the page size.
func WithPerPage[T any](n int) Option[T] {
	return func(q *Query[T]) {
		if n > 0 {
			q.pagination.PerPage = n
		}
	}
}

// WithFilters seeds the initial filter criteria without triggering a fetch.
func WithFilters[T any](f Filters) Option[T] {
	return func(q *Query[T]) { q.filters = f }
}

// WithPage seeds the initial page without triggering a fetch.
func WithPage[T any](n int) Option[T] {
	return func(q *Query[T]) {
		if n > 0 {
			q.pagination.CurrentPage = n
		}
	}
}

// WithOwner installs the owner-id extractor used for defense-in-depth row
// filtering when the principal is a leader or member.
func WithOwner[T any](fn func(T) int) Option[T] {
	return func(q *Query[T]) { q.ownedBy = fn }
}

// New builds a Query for the given principal.
func New[T any](principal *session.Principal, fetch Fetcher[T], opts ...Option[T]) *Query[T] {
	q := &Query[T]{
		fetch:      fetch,
		principal:  principal,
		pagination: Pagination{CurrentPage: 1, PerPage: DefaultPerPage},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// OnChange registers a callback invoked after every state change.
func (q *Query[T]) OnChange(fn func()) {
	q.mu.Lock()
	q.listeners = append(q.listeners, fn)
	q.mu.Unlock()
}

// Rows returns the rows from the last successful fetch.
func (q *Query[T]) Rows() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rows
}

// Filters returns a copy of the current filter criteria.
func (q *Query[T]) Filters() Filters {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.filters
}

// Pagination returns the current pagination state.
func (q *Query[T]) Pagination() Pagination {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pagination
}

// Err returns the error from the last fetch, or nil.
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Loading reports whether a fetch is in flight.
func (q *Query[T]) Loading() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading
}

// SetFilter updates one filter field, re-anchors to the first page and
// refetches. Changing any filter always resets pagination.
func (q *Query[T]) SetFilter(ctx context.Context, key FilterKey, value string) error {
	q.mu.Lock()
	q.filters.set(key, value)
	q.pagination.CurrentPage = 1
	q.mu.Unlock()
	return q.Refetch(ctx)
}

// ClearFilters resets every filter, re-anchors to page 1 and refetches.
func (q *Query[T]) ClearFilters(ctx context.Context) error {
	q.mu.Lock()
	q.filters = Filters{}
	q.pagination.CurrentPage = 1
	q.mu.Unlock()
	return q.Refetch(ctx)
}

// SetPage moves to page n and refetches. Out-of-range pages are clamped to
// the valid range; a request for the page already shown is a no-op. Before
// the first fetch has reported a total, the only known-valid page is 1.
func (q *Query[T]) SetPage(ctx context.Context, n int) error {
	q.mu.Lock()
	if n < 1 || q.pagination.TotalPages == 0 {
		n = 1
	}
	if q.pagination.TotalPages > 0 && n > q.pagination.TotalPages {
		n = q.pagination.TotalPages
	}
	if n == q.pagination.CurrentPage {
		q.mu.Unlock()
		return nil
	}
	q.pagination.CurrentPage = n
	q.mu.Unlock()
	return q.Refetch(ctx)
}

// Refetch issues a request for the current page/filter combination. On
// success rows and pagination are replaced from the response; on failure the
// last good rows and pagination stay on screen and Err is set. A response
// superseded by a newer request is discarded entirely.
func (q *Query[T]) Refetch(ctx context.Context) error {
	q.mu.Lock()
	q.generation++
	gen := q.generation
	q.loading = true
	params := Params{
		Page:    q.pagination.CurrentPage,
		PerPage: q.pagination.PerPage,
		Filters: q.filters,
	}
	// Leaders and members only ever see their own submissions. The server
	// enforces this; scoping the request here is the second line of defense.
	if q.principal != nil && scopedRole(q.principal.Role) {
		params.UserID = q.principal.ID
	}
	q.mu.Unlock()
	q.notify()

	page, err := q.fetch(ctx, params)

	q.mu.Lock()
	if gen != q.generation {
		// A newer request was issued while this one was in flight.
		q.mu.Unlock()
		return nil
	}
	q.loading = false
	if err != nil {
		q.lastErr = err
		q.mu.Unlock()
		q.notify()
		return err
	}
	q.lastErr = nil

	rows := page.Rows
	if q.ownedBy != nil && q.principal != nil && scopedRole(q.principal.Role) {
		rows = filterOwned(rows, q.ownedBy, q.principal.ID)
	}
	q.rows = rows

	q.pagination.TotalItems = page.TotalItems
	q.pagination.TotalPages = totalPages(page.TotalItems, q.pagination.PerPage)
	// The server's reported page is authoritative, not the one we asked for.
	if page.CurrentPage > 0 {
		q.pagination.CurrentPage = page.CurrentPage
	}
	q.mu.Unlock()
	q.notify()
	return nil
}

func (q *Query[T]) notify() {
	q.mu.Lock()
	listeners := make([]func(), len(q.listeners))
	copy(listeners, q.listeners)
	q.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func scopedRole(r session.Role) bool {
	return r == session.RoleLeader || r == session.RoleMember
}

func filterOwned[T any](rows []T, ownedBy func(T) int, ownerID int) []T {
	out := rows[:0:0]
	for _, row := range rows {
		if ownedBy(row) == ownerID {
			out = append(out, row)
		}
	}
	return out
}

func totalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := totalItems / perPage
	if totalItems%perPage != 0 {
		pages++
	}
	return pages
}
