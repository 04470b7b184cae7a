// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseStart extracts the 1-based "start" query parameter.
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := r.URL.Query().Get("start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Trim trims a slice fetched with LimitPlusOne down to PageSize,
// reporting whether a next page exists.
func Trim[T any](rows *[]T) (hasNext bool) {
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		return true
	}
	return false
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int // 1-based start index (0 if no results)
	End       int // 1-based end index (0 if no results)
	PrevStart int
	NextStart int
}

// ComputeRange calculates display range values given the current start
// index and number of items shown.
func ComputeRange(start, shown int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}
	prev := start - PageSize
	if prev < 1 {
		prev = 1
	}
	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prev,
		NextStart: start + shown,
	}
}
