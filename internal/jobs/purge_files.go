// Package jobs contains the background job handlers run by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/storage"
	"github.com/DukeRupert/blog/internal/worker"
)

// PurgeFilesHandler deletes stored files that no post references anymore,
// such as replaced covers and the covers of deleted posts.
type PurgeFilesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewPurgeFilesHandler creates a new handler for file purge jobs.
func NewPurgeFilesHandler(files storage.Storage, logger *slog.Logger) *PurgeFilesHandler {
	return &PurgeFilesHandler{
		storage: files,
		logger:  logger,
	}
}

// Type returns the job type identifier.
func (h *PurgeFilesHandler) Type() string {
	return worker.JobTypePurgeFiles
}

// Handle deletes every key in the payload. Keys already gone count as
// deleted, so a retried job only redoes the keys that failed.
func (h *PurgeFilesHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.PurgeFilesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	var errs []error
	for _, key := range p.Keys {
		err := h.storage.Delete(ctx, key)
		switch {
		case err == nil:
			metrics.FilesPurged.Inc()
			h.logger.Debug("Purged file", "key", key)
		case storage.IsNotFound(err):
			h.logger.Debug("File already gone", "key", key)
		case storage.IsInvalidKey(err):
			h.logger.Warn("Skipping invalid key", "key", key, "error", err)
		default:
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	h.logger.Info("Purged files", "count", len(p.Keys))
	return nil
}
