package domain

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pagination carries a 1-indexed page and a row limit from the HTTP layer to
// the repository.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination applies defaults (page 1, limit 20) to missing or
// non-positive values and caps the limit at 100.
func NewPagination(page, limit *int) Pagination {
	p := Pagination{Page: 1, Limit: defaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxPageLimit)
	}
	return p
}

// Offset is the SQL OFFSET for the page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

// Page is one page of results together with the total row count.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPage wraps items; a nil slice becomes empty so it encodes as [].
func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}

// TotalPages rounds up; an empty result has zero pages.
func (pg Page[T]) TotalPages() int {
	if pg.Limit <= 0 {
		return 0
	}
	return (pg.Total + pg.Limit - 1) / pg.Limit
}
