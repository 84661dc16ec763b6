// Package query holds the list search and paging policy shared by the
// resource handlers.
package query

import "strconv"

// DefaultPageSize is the number of items per catalog list page.
const DefaultPageSize = 6

// PagedResult is one page of a filtered listing.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPagedResult computes the page count for a slice of items already
// filtered and windowed by the store.
func NewPagedResult[T any](items []T, page, pageSize int, total int64) PagedResult[T] {
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return PagedResult[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: pages,
	}
}

// ResolveSearch applies the search precedence rule: a non-empty explicit
// search string overrides the session-stored one, resets paging to the first
// page and is written back to the session. An empty or absent parameter falls
// back to the stored filter, the way a form submission with a blank search
// field leaves the current filter in place.
func ResolveSearch(explicit, stored string) (effective string, override bool) {
	if explicit != "" {
		return explicit, true
	}
	return stored, false
}

// ParsePage parses a page query parameter, defaulting to 1 when the value is
// absent, malformed or below 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
