package pager

import (
	"fmt"
	"strings"
)

// MatchFunc reports whether record matches the lower-cased search term.
type MatchFunc[T any] func(record T, term string) bool

// Pager keeps the search term and the 1-based page cursor of one table.
// It is not safe for concurrent use.
type Pager[T any] struct {
	perPage int
	page    int
	term    string
	match   MatchFunc[T]
}

func New[T any](perPage int, match MatchFunc[T]) *Pager[T] {
	if perPage <= 0 {
		perPage = 1
	}
	return &Pager[T]{perPage: perPage, page: 1, match: match}
}

// Window is the slice of a filtered snapshot shown on the current page.
type Window[T any] struct {
	Items        []T
	Page         int
	TotalPages   int
	Matched      int
	PrevDisabled bool
	NextDisabled bool
}

// PageInfo mirrors the "page N of M" label, both floored at 1.
func (w Window[T]) PageInfo() string {
	return fmt.Sprintf("第%d页/共%d页", w.Page, max(1, w.TotalPages))
}

func (p *Pager[T]) Page() int {
	return p.page
}

func (p *Pager[T]) Term() string {
	return p.term
}

func (p *Pager[T]) PerPage() int {
	return p.perPage
}

// Search replaces the filter term and always goes back to page 1.
func (p *Pager[T]) Search(term string) {
	p.term = strings.ToLower(strings.TrimSpace(term))
	p.page = 1
}

// Prev steps back one page; it reports false when already on page 1.
func (p *Pager[T]) Prev() bool {
	if p.page <= 1 {
		return false
	}
	p.page--
	return true
}

// Next advances without checking the page count. A cursor past the last page
// is pulled back by the following Render.
func (p *Pager[T]) Next() {
	p.page++
}

// Filter returns the records matching the current term, keeping their order.
func (p *Pager[T]) Filter(records []T) []T {
	if p.term == "" || p.match == nil {
		return records
	}
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if p.match(r, p.term) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Render filters records, clamps the cursor into [1, max(1, totalPages)] and
// returns the current page window.
func (p *Pager[T]) Render(records []T) Window[T] {
	filtered := p.Filter(records)

	totalPages := (len(filtered) + p.perPage - 1) / p.perPage
	if p.page > max(1, totalPages) {
		p.page = max(1, totalPages)
	}
	if p.page < 1 {
		p.page = 1
	}

	start := (p.page - 1) * p.perPage
	end := min(start+p.perPage, len(filtered))
	var items []T
	if start < end {
		items = filtered[start:end]
	}

	return Window[T]{
		Items:        items,
		Page:         p.page,
		TotalPages:   totalPages,
		Matched:      len(filtered),
		PrevDisabled: p.page <= 1,
		NextDisabled: p.page >= totalPages,
	}
}

// ContainsFold is the case-insensitive substring test used by table filters.
// term is expected to be lower-cased already.
func ContainsFold(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}
