// Package pagination implements page/limit parsing and the page envelope
// returned by listing endpoints.
package pagination

import (
	"math"
	"strconv"
)

// Params selects one page of a listing. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Parse builds Params from raw page and limit values. Missing, malformed or
// non-positive values fall back to page 1 and defaultLimit. Limits above
// maxLimit are clamped, and the page is clamped so Offset stays within int32.
func Parse(page, limit string, defaultLimit, maxLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}

	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit <= 0 {
		p.Limit = 1
	}
	if maxPage := math.MaxInt32 / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}

	return p
}

// Offset is the number of rows to skip. It never overflows into a negative
// value, even for Params not built by Parse.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.Limit {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.Limit
}

// Page is a single page of items plus the totals needed to navigate.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPage assembles a page. Items beyond p.Limit are dropped.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) > p.Limit {
		items = items[:p.Limit]
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: PageCount(total, p.Limit),
	}
}

// PageCount returns ceil(total/limit).
func PageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
