// Package pagination renders the page navigation shown under post lists.
package pagination

import (
	"net/url"
	"strconv"

	pager "github.com/DukeRupert/blog/internal/pagination"
)

// Data contains pagination information for display.
type Data struct {
	CurrentPage int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Window      pager.Window
}

// Config allows customization of the rendered nav.
type Config struct {
	BaseURL string // e.g. "/categories/{id}"; existing query values are kept
	Class   string // extra classes merged onto the <nav>
}

// FromPage builds the display data of a page.
func FromPage(p pager.Page) (Data, error) {
	window, err := p.Window()
	if err != nil {
		return Data{}, err
	}
	return Data{
		CurrentPage: p.Number,
		TotalPages:  p.TotalPages(),
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
		PrevPage:    p.PrevNumber(),
		NextPage:    p.NextNumber(),
		Window:      window,
	}, nil
}

// PageURL returns the URL of page n below baseURL.
func PageURL(baseURL string, n int) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "?page=" + strconv.Itoa(n)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String()
}
