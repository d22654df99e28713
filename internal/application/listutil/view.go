package listutil

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Query is the in-memory form of a list request.
type Query struct {
	Search  string
	Filters map[string]string
	Sort    string
	Desc    bool
}

// Query converts parsed request parameters into a Query.
func (p ListParams) Query() Query {
	return Query{
		Search:  p.Search,
		Filters: p.Filters,
		Sort:    p.Sort,
		Desc:    p.Dir == "desc",
	}
}

// View declares which fields of T can be searched, filtered and sorted.
type View[T any] struct {
	Search  []func(T) string          // fields matched by case-insensitive substring
	Filters map[string]func(T) string // fields matched by case-insensitive equality
	Sorts   map[string]func(T) any    // nil or nil-pointer values sort last
}

// SortKeys lists the sortable column names in order.
func (v View[T]) SortKeys() []string {
	keys := make([]string, 0, len(v.Sorts))
	for k := range v.Sorts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterKeys lists the filterable parameter names in order.
func (v View[T]) FilterKeys() []string {
	keys := make([]string, 0, len(v.Filters))
	for k := range v.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply searches, filters then stable-sorts items.
// PRE: none
// POST: Returns a new slice; items is not mutated. No match yields an empty, non-nil slice
// INVARIANT: Records with equal or missing sort values keep their input order
func (v View[T]) Apply(items []T, q Query) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && !v.matches(item, term) {
			continue
		}
		if !v.passes(item, q.Filters) {
			continue
		}
		out = append(out, item)
	}

	key, ok := v.Sorts[q.Sort]
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := deref(key(out[i]))
		b, bok := deref(key(out[j]))
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		c := compare(a, b)
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func (v View[T]) matches(item T, term string) bool {
	for _, field := range v.Search {
		if strings.Contains(strings.ToLower(field(item)), term) {
			return true
		}
	}
	return false
}

func (v View[T]) passes(item T, filters map[string]string) bool {
	for name, want := range filters {
		field, ok := v.Filters[name]
		if !ok || want == "" {
			continue
		}
		if !strings.EqualFold(field(item), want) {
			return false
		}
	}
	return true
}

// Paginate slices items to the requested page.
// POST: Returns the page and metadata; the page is clamped into range
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	info := NewPageInfo(page, perPage, len(items))
	start := info.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + info.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], info
}

// deref unwraps pointer sort values and reports whether a value is present.
func deref(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *int:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *float64:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *string:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *time.Time:
		if x == nil {
			return nil, false
		}
		return *x, true
	}
	return v, true
}

// compare orders two present values. Values of the same listed kind compare
// natively; anything else compares by its case-folded fmt text.
func compare(a, b any) int {
	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmpOrdered(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(strings.ToLower(x), strings.ToLower(y))
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmpOrdered(boolRank(x), boolRank(y))
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return cmpOrdered(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func cmpOrdered[N int | float64 | string](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
