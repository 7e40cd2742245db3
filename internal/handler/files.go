// Package handler contains HTTP handlers for the blog.
//
// This file serves stored cover images when storage is the local filesystem.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DukeRupert/blog/internal/storage"
)

// FileHandler serves files from storage under /files/.
type FileHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files storage.Storage, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		storage: files,
		logger:  logger,
	}
}

// RegisterRoutes registers the file route.
func (h *FileHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /files/{key...}", h.Serve)
}

// Serve streams the file named by the rest of the path.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, info, err := h.storage.Get(r.Context(), key)
	if err != nil {
		if storage.IsNotFound(err) || storage.IsInvalidKey(err) {
			http.NotFound(w, r)
			return
		}
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	defer body.Close()

	// Keys are unique per upload, so files never change
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", info.ContentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("file copy interrupted", "key", key, "error", err)
	}
}
