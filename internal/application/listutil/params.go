// Package listutil parses list requests and applies search, filter, sort
// and pagination to in-memory collections.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// DefaultPerPage applies when per_page is missing or not one of PerPageOptions.
const DefaultPerPage = 20

// PerPageOptions are the page sizes a client may ask for.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// ListParams is a parsed list request:
//
//	?q=pointer&domain=health&sort=rating&dir=desc&page=2&per_page=50&all=1
type ListParams struct {
	Page    int
	PerPage int
	Sort    string // empty keeps input order
	Dir     string // "asc" or "desc"
	Search  string
	Filters map[string]string
	All     bool // skip search and filters, used by "export all"
}

// Parse reads a list request, keeping only the sort columns and filter
// names v declares.
// POST: Page >= 1; PerPage is one of PerPageOptions; Dir is "asc" or "desc"
func (v View[T]) Parse(q url.Values) ListParams {
	return ParseListParams(q, v.SortKeys(), v.FilterKeys())
}

// ParseListParams is Parse for callers without a View.
func ParseListParams(q url.Values, sortKeys, filterKeys []string) ListParams {
	p := ListParams{
		Page:    max(atoi(q.Get("page")), 1),
		PerPage: atoi(q.Get("per_page")),
		Sort:    q.Get("sort"),
		Dir:     q.Get("dir"),
		Search:  q.Get("q"),
		Filters: make(map[string]string),
	}
	p.All, _ = strconv.ParseBool(q.Get("all"))
	if !slices.Contains(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	if !slices.Contains(sortKeys, p.Sort) {
		p.Sort = ""
	}
	if p.Dir != "desc" {
		p.Dir = "asc"
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// PageInfo describes one page of a list response.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo clamps page into [1, TotalPages]. An empty list has one page.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), pages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Offset is the index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}
