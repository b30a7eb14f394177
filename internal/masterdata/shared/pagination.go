package shared

import (
	"net/http"
	"strconv"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CompanyID      *int64
	BusinessTypeID *int64
	FactoryID      *int64
}

// FiltersFromQuery parses the standard filters off a request.
func FiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	f := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if id, err := strconv.ParseInt(q.Get("company"), 10, 64); err == nil && id > 0 {
		f.CompanyID = &id
	}
	if id, err := strconv.ParseInt(q.Get("business_type"), 10, 64); err == nil && id > 0 {
		f.BusinessTypeID = &id
	}
	if id, err := strconv.ParseInt(q.Get("factory"), 10, 64); err == nil && id > 0 {
		f.FactoryID = &id
	}
	return f
}
