package pagination

import (
	"context"
	"html/template"

	"github.com/a-h/templ"
)

//go:generate templ generate

const (
	navClass      = "mt-10 flex justify-center"
	listClass     = "flex items-center gap-1 text-sm"
	itemClass     = "inline-flex min-w-9 justify-center rounded border border-gray-200 px-3 py-1.5 text-gray-700 hover:bg-gray-50"
	currentClass  = "border-gray-900 bg-gray-900 text-white hover:bg-gray-900"
	ellipsisClass = "border-transparent text-gray-400 hover:bg-transparent"
)

// HTML renders the nav for use inside html/template pages.
func HTML(ctx context.Context, data Data, cfg Config) (template.HTML, error) {
	return templ.ToGoHTML(ctx, Nav(data, cfg))
}
