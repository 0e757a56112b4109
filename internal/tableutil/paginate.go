package tableutil

// Paginate returns the 1-based page of rows. Pages outside the list give an
// empty, non-nil slice.
func Paginate[T any](rows []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := min(start+pageSize, len(rows))
	return rows[start:end:end]
}

// TotalPages is ceil(totalItems/pageSize), 0 for an empty list.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize < 1 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// DisplayPages is the page count shown to users, never below 1.
func DisplayPages(totalPages int) int {
	return max(1, totalPages)
}
