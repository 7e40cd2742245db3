// Package markdown renders post bodies to HTML.
//
// The renderer mirrors the blog's markdown feature set: GitHub flavored
// extensions, footnotes and definition lists, highlighted code blocks and
// heading anchors that feed the table of contents.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/DukeRupert/blog/internal/domain"
)

// Document is a rendered markdown source.
type Document struct {
	HTML template.HTML
	TOC  []domain.TOCEntry
}

// codeStyle is the chroma style of highlighted code blocks.
const codeStyle = "github"

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer. Code blocks are highlighted with CSS
// classes so the stylesheet controls the theme.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{md: md}
}

// Render converts src to HTML and collects its headings.
func (r *Renderer) Render(src string) (Document, error) {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}

	return Document{
		HTML: template.HTML(buf.String()),
		TOC:  buildTOC(collectHeadings(doc, source)),
	}, nil
}

// WriteCSS writes the stylesheet for highlighted code blocks.
func (r *Renderer) WriteCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(codeStyle))
}

// Excerpt returns the first n characters of the plain text of src.
// An ellipsis is appended when the text was cut.
func (r *Renderer) Excerpt(src string, n int) string {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	plain := strings.Join(strings.Fields(plainText(doc, source)), " ")
	if n <= 0 || utf8.RuneCountInString(plain) <= n {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// =============================================================================
// Table of contents
// =============================================================================

func collectHeadings(doc ast.Node, source []byte) []domain.TOCEntry {
	var headings []domain.TOCEntry

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		entry := domain.TOCEntry{
			Level: h.Level,
			Text:  strings.TrimSpace(plainText(h, source)),
		}
		if id, ok := h.AttributeString("id"); ok {
			switch v := id.(type) {
			case []byte:
				entry.ID = string(v)
			case string:
				entry.ID = v
			}
		}
		headings = append(headings, entry)
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// buildTOC nests a flat heading list by level. A heading becomes a child of
// the closest preceding heading with a smaller level.
func buildTOC(headings []domain.TOCEntry) []domain.TOCEntry {
	var root []domain.TOCEntry
	var stack []*[]domain.TOCEntry
	var levels []int

	for _, h := range headings {
		for len(levels) > 0 && levels[len(levels)-1] >= h.Level {
			levels = levels[:len(levels)-1]
			stack = stack[:len(stack)-1]
		}

		target := &root
		if len(stack) > 0 {
			target = stack[len(stack)-1]
		}
		*target = append(*target, h)

		added := &(*target)[len(*target)-1]
		stack = append(stack, &added.Children)
		levels = append(levels, h.Level)
	}

	return root
}

// plainText concatenates the text content under n, separating blocks with spaces.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock {
				sb.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return sb.String()
}
