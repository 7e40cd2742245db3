package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ErrInvalidPage is returned by ParseNumber for page values that are not
// integers or fall outside the page range.
var ErrInvalidPage = errors.New("pagination: invalid page")

// Page is the pagination state of a single list request.
type Page struct {
	Number  int   // 1-indexed current page
	PerPage int   // items per page
	Total   int64 // total items across all pages
}

// NewPage builds a Page, clamping perPage to [1, MaxPerPage] and number to
// the valid page range.
func NewPage(number, perPage int, total int64) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if total < 0 {
		total = 0
	}

	p := Page{Number: number, PerPage: perPage, Total: total}
	p.Number = max(1, min(p.Number, p.TotalPages()))
	return p
}

// TotalPages returns the page count. An empty result set still has one page.
func (p Page) TotalPages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	pages := p.Total / int64(p.PerPage)
	if p.Total%int64(p.PerPage) > 0 {
		pages++
	}
	return int(pages)
}

// IsPaginated reports whether the results span more than one page.
func (p Page) IsPaginated() bool {
	return p.TotalPages() > 1
}

// Offset returns the number of items to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit returns the number of items to fetch.
func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages()
}

func (p Page) PrevNumber() int {
	return p.Number - 1
}

func (p Page) NextNumber() int {
	return p.Number + 1
}

// Window returns the pagination window for this page.
func (p Page) Window() (Window, error) {
	return Compute(p.Number, p.TotalPages())
}

// ParseNumber parses the raw ?page= value. An empty value selects the first
// page and "last" selects the final page.
func ParseNumber(raw string, totalPages int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	if raw == "last" {
		return max(totalPages, 1), nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidPage, raw)
	}
	if n < 1 || n > max(totalPages, 1) {
		return 0, fmt.Errorf("%w: page %d outside [1, %d]", ErrInvalidPage, n, max(totalPages, 1))
	}
	return n, nil
}
