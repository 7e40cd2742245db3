// Package pagination computes page arithmetic and the page-number window
// shown by list pages.
package pagination

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned by Compute when the page inputs are out of range.
var ErrInvalidArgument = errors.New("pagination: invalid argument")

// windowSpan is the number of pages shown on each side of the current page.
const windowSpan = 2

// Window describes which page numbers a pagination control renders around
// the current page. The current page itself is rendered by the caller.
type Window struct {
	Left         []int // pages immediately before the current page
	Right        []int // pages immediately after the current page
	LeftHasMore  bool  // gap between page 1 and Left
	RightHasMore bool  // gap between Right and the last page
	ShowFirst    bool  // render page 1 on its own
	ShowLast     bool  // render the last page on its own
}

// IsEmpty reports whether the window has nothing to render.
func (w Window) IsEmpty() bool {
	return len(w.Left) == 0 && len(w.Right) == 0 &&
		!w.LeftHasMore && !w.RightHasMore && !w.ShowFirst && !w.ShowLast
}

// Compute returns the window for currentPage out of totalPages.
//
// Page numbers are taken from the range 1..totalPages with half-open
// 0-indexed slices: Left is range[max(c-3,0):c-1] and Right is
// range[c:c+2], clipped to the range.
func Compute(currentPage, totalPages int) (Window, error) {
	if totalPages < 1 {
		return Window{}, fmt.Errorf("%w: total pages must be at least 1, got %d", ErrInvalidArgument, totalPages)
	}
	if currentPage < 1 || currentPage > totalPages {
		return Window{}, fmt.Errorf("%w: current page %d outside [1, %d]", ErrInvalidArgument, currentPage, totalPages)
	}

	var w Window
	if totalPages == 1 {
		return w, nil
	}

	if currentPage > 1 {
		w.Left = pageSlice(max(currentPage-windowSpan-1, 0), currentPage-1)
		w.LeftHasMore = w.Left[0] > 2
		w.ShowFirst = w.Left[0] > 1
	}

	if currentPage < totalPages {
		w.Right = pageSlice(currentPage, min(currentPage+windowSpan, totalPages))
		last := w.Right[len(w.Right)-1]
		w.RightHasMore = last < totalPages-1
		w.ShowLast = last < totalPages
	}

	return w, nil
}

// pageSlice returns range(1..N)[from:to] without materializing the range.
func pageSlice(from, to int) []int {
	pages := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		pages = append(pages, i+1)
	}
	return pages
}
