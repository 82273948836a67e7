package request

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

// ProductQuery is the store-agnostic listing filter: optional exact category
// match, optional case-insensitive substring search over name and
// description, and a 1-based pagination window.
type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func ProductQueryFromRequest(r *http.Request) ProductQuery {
	params := r.URL.Query()
	q := ProductQuery{
		Category: params.Get("category"),
		Search:   params.Get("search"),
		Page:     1,
		Limit:    DefaultPageSize,
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		q.Page = page
	}
	if limit, err := strconv.Atoi(params.Get("limit")); err == nil {
		q.Limit = limit
	}
	return q.Normalize()
}

// Normalize clamps the window before it ever reaches the store: page is at
// least 1 and limit is capped at MaxPageSize regardless of what was asked.
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// Offset is the number of rows skipped before the page window.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Paginated reports whether the response should carry pagination metadata;
// at the hard cap the caller gets the plain array envelope.
func (q ProductQuery) Paginated() bool {
	return q.Limit < MaxPageSize
}
