package projections

import (
	"hackathon/internal/application/listutil"
)

// ItemSource is the read side of a moderation board.
type ItemSource[T any] interface {
	Items() []T
	Degraded() bool
}

// ModerationListResult carries one page of a moderation list.
type ModerationListResult[T any] struct {
	Items    []T
	Page     listutil.PageInfo
	Matched  int  // records matching search and filters, before paging
	Total    int  // records on the board
	Degraded bool // the last fetch failed; Items is empty rather than stale
}

// QueryModerationList searches, filters, sorts then pages a board.
// PRE: view describes T
// POST: Matched <= Total; with params.All every record is returned on one page
// INVARIANT: the board is not mutated
func QueryModerationList[T any](src ItemSource[T], view listutil.View[T], params listutil.ListParams) ModerationListResult[T] {
	items := src.Items()
	res := ModerationListResult[T]{Total: len(items), Degraded: src.Degraded()}

	matched := Select(items, view, params)
	res.Matched = len(matched)
	if params.All {
		res.Items = matched
		res.Page = listutil.NewPageInfo(1, max(len(matched), 1), len(matched))
		return res
	}
	res.Items, res.Page = listutil.Paginate(matched, params.Page, params.PerPage)
	return res
}

// Select returns the records a list request covers, unpaged. The "all"
// toggle keeps the requested sort but skips search and filters.
func Select[T any](items []T, view listutil.View[T], params listutil.ListParams) []T {
	q := params.Query()
	if params.All {
		q.Search, q.Filters = "", nil
	}
	return view.Apply(items, q)
}

// ActiveRegistrationsByDefault hides archived registrations unless the
// request asks for them explicitly or for everything.
func ActiveRegistrationsByDefault(params listutil.ListParams) listutil.ListParams {
	if params.All {
		return params
	}
	if _, ok := params.Filters["archived"]; ok {
		return params
	}
	filters := make(map[string]string, len(params.Filters)+1)
	for k, v := range params.Filters {
		filters[k] = v
	}
	filters["archived"] = "false"
	params.Filters = filters
	return params
}
