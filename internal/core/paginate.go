package core

// DefaultPageSize is the fixed number of rows shown per page.
const DefaultPageSize = 5

// TotalPages returns ceil(n / pageSize), reported as 1 when the set is
// empty so that an empty result still displays as page 1 of 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces a 1-based page index into [1, totalPages]. Callers must
// re-clamp whenever the filtered set changes so the current page never
// points past the end.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages >= 1 && page > totalPages {
		return totalPages
	}
	return page
}

// Page returns the half-open window [(page-1)*size, page*size) of the
// filtered records, clamped to the slice bounds.
func Page(records []Record, page, size int) []Record {
	if size <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(records) {
		return nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
