// Package table implements the stateful sort and pagination controller that
// backs each indicator view. An Engine is owned by a single view and is not
// safe for concurrent use.
package table

import (
	"samparkdash/internal/cell"
	"samparkdash/internal/tableutil"
)

// DefaultPageSize applies when no page size is configured.
const DefaultPageSize = 25

// Accessor reads the cell stored under key in a row.
type Accessor[T any] func(row T, key string) cell.Value

// Option configures an Engine.
type Option func(*options)

type options struct {
	pageSize int
	sort     *tableutil.SortConfig
}

// WithPageSize sets the initial page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.pageSize = n
		}
	}
}

// WithSort sets the initial sort.
func WithSort(cfg *tableutil.SortConfig) Option {
	return func(o *options) {
		o.sort = cfg
	}
}

// Engine holds sort and page state over an input list and derives the
// sorted and paginated views from it.
type Engine[T any] struct {
	rows     []T
	get      Accessor[T]
	sort     *tableutil.SortConfig
	page     int
	pageSize int

	// memoized views, nil when stale
	sorted    []T
	paginated []T
}

// New builds an Engine on page 1.
func New[T any](rows []T, get Accessor[T], opts ...Option) *Engine[T] {
	o := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[T]{
		rows:     rows,
		get:      get,
		sort:     copySort(o.sort),
		page:     1,
		pageSize: o.pageSize,
	}
}

func copySort(cfg *tableutil.SortConfig) *tableutil.SortConfig {
	if cfg == nil {
		return nil
	}
	c := *cfg
	return &c
}

func (e *Engine[T]) invalidate() {
	e.sorted = nil
	e.paginated = nil
}

// SortedData is the whole input in the current sort order.
func (e *Engine[T]) SortedData() []T {
	if e.sorted == nil {
		e.sorted = tableutil.Sort(e.rows, e.sort, e.get)
		if e.sorted == nil {
			e.sorted = []T{}
		}
	}
	return e.sorted
}

// PaginatedData is the current page of SortedData.
func (e *Engine[T]) PaginatedData() []T {
	if e.paginated == nil {
		e.paginated = tableutil.Paginate(e.SortedData(), e.page, e.pageSize)
	}
	return e.paginated
}

// Page is the current 1-based page.
func (e *Engine[T]) Page() int { return e.page }

// PageSize is the current page size.
func (e *Engine[T]) PageSize() int { return e.pageSize }

// TotalItems is the length of the input list.
func (e *Engine[T]) TotalItems() int { return len(e.rows) }

// TotalPages is 0 for an empty input.
func (e *Engine[T]) TotalPages() int {
	return tableutil.TotalPages(len(e.rows), e.pageSize)
}

// SortConfig returns a copy of the active sort, or nil.
func (e *Engine[T]) SortConfig() *tableutil.SortConfig {
	return copySort(e.sort)
}

// SetPage moves to page n, clamped to the available pages.
func (e *Engine[T]) SetPage(n int) {
	last := tableutil.DisplayPages(e.TotalPages())
	n = min(max(n, 1), last)
	if n == e.page {
		return
	}
	e.page = n
	e.paginated = nil
}

// SetPageSize changes the page size and returns to page 1.
func (e *Engine[T]) SetPageSize(n int) {
	e.pageSize = max(n, 1)
	e.page = 1
	e.paginated = nil
}

// HandleSort cycles the sort on key and returns to page 1.
func (e *Engine[T]) HandleSort(key string) {
	e.sort = tableutil.Cycle(e.sort, key)
	e.page = 1
	e.invalidate()
}

// SetSortConfig replaces the sort and returns to page 1.
func (e *Engine[T]) SetSortConfig(cfg *tableutil.SortConfig) {
	e.sort = copySort(cfg)
	e.page = 1
	e.invalidate()
}

// ResetPagination returns to page 1 without touching the sort. Callers use
// it whenever the upstream filtered list changes.
func (e *Engine[T]) ResetPagination() {
	if e.page == 1 {
		return
	}
	e.page = 1
	e.paginated = nil
}

// SetData replaces the input list. Page and sort are kept.
func (e *Engine[T]) SetData(rows []T) {
	e.rows = rows
	e.invalidate()
}
