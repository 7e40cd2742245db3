package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/DukeRupert/blog/internal/markdown"
)

// CodeStyleHandler serves the stylesheet of highlighted code blocks. The
// CSS is generated once when the handler is built.
func CodeStyleHandler(md *markdown.Renderer) (http.Handler, error) {
	var buf bytes.Buffer
	if err := md.WriteCSS(&buf); err != nil {
		return nil, fmt.Errorf("generate code style: %w", err)
	}
	css := buf.Bytes()
	modified := time.Now()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, "chroma.css", modified, bytes.NewReader(css))
	}), nil
}
