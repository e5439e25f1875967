// Package utils holds small pagination helpers shared by the HTTP layer and
// the services.
package utils

import "strconv"

// Page size bounds for list endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// AtoiDefault parses s as an int, returning def when s is empty or invalid.
// Whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParsePage reads raw page and page_size query values. page is at least 1;
// size defaults to DefaultPageSize and is clamped to [1, MaxPageSize].
func ParsePage(rawPage, rawSize string) (page, size int) {
	page = AtoiDefault(rawPage, 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(rawSize, DefaultPageSize)
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Window returns the [start, end) slice bounds of page within total items.
// A page past the end yields start == end == total.
//
//	start, end := utils.Window(len(all), page, size)
//	items := all[start:end]
func Window(total, page, size int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	start = (page - 1) * size
	if start >= total {
		return total, total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

// TotalPages is ceil(total/size); zero when there are no items.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
