package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/repository"
	"github.com/DukeRupert/blog/internal/storage"
	"github.com/DukeRupert/blog/internal/worker"
)

// Cover image constants.
const (
	MaxCoverSize         = 10 << 20 // 10 MiB
	CoverThumbWidth      = 600
	CoverThumbHeight     = 400
	ThumbnailJPEGQuality = 85

	// coverURLExpiry applies when storage has no public URL and has to sign one.
	coverURLExpiry = 24 * time.Hour
)

// CoverService defines the interface for post cover images.
type CoverService interface {
	// Upload stores an image as the cover of a post together with a
	// thumbnail, replacing any previous cover.
	// Returns domain.ENOTFOUND if the post does not exist, domain.EINVALID
	// for unsupported images and domain.ETOOLARGE above MaxCoverSize.
	Upload(ctx context.Context, postID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Cover, error)
}

// coverService implements the CoverService interface.
type coverService struct {
	store     repository.Store
	storage   storage.Storage
	thumbnail ThumbnailProcessor
	logger    *slog.Logger
}

// NewCoverService creates a new CoverService.
func NewCoverService(
	store repository.Store,
	files storage.Storage,
	thumbnail ThumbnailProcessor,
	logger *slog.Logger,
) CoverService {
	return &coverService{
		store:     store,
		storage:   files,
		thumbnail: thumbnail,
		logger:    logger,
	}
}

func (s *coverService) Upload(ctx context.Context, postID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Cover, error) {
	const op = "cover.upload"

	row, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "post", postID.String())
		}
		return nil, domain.Internal(err, op, "failed to get post")
	}

	// Read one byte past the limit to detect oversized uploads.
	raw, err := io.ReadAll(io.LimitReader(data, MaxCoverSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read upload")
	}
	if len(raw) > MaxCoverSize {
		return nil, domain.Errorf(domain.ETOOLARGE, op, "cover image must be %d MB or smaller", MaxCoverSize>>20)
	}
	if len(raw) == 0 {
		return nil, domain.Invalid(op, "cover image is empty")
	}

	// Trust the bytes over the client supplied type.
	if sniffed := storage.DetectContentType("", "", bytes.NewReader(raw)); sniffed != "application/octet-stream" {
		contentType = sniffed
	}
	contentType = storage.DetectContentType(contentType, filename, nil)
	if !storage.IsAllowedImageType(contentType) {
		return nil, domain.Invalid(op, fmt.Sprintf("unsupported image type %q", contentType))
	}

	thumb, err := s.thumbnail.GenerateThumbnail(bytes.NewReader(raw), CoverThumbWidth, CoverThumbHeight)
	if err != nil {
		return nil, domain.Invalid(op, "cover image could not be decoded")
	}

	cover := &domain.Cover{
		Key:      storage.CoverKey(postID, filename),
		ThumbKey: storage.CoverThumbnailKey(postID),
	}

	if err := s.storage.Put(ctx, cover.Key, bytes.NewReader(raw), storage.PutOptions{
		ContentType: contentType,
		MaxSize:     MaxCoverSize,
		Public:      true,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to store cover image")
	}
	if err := s.storage.Put(ctx, cover.ThumbKey, bytes.NewReader(thumb), storage.PutOptions{
		ContentType: "image/jpeg",
		Public:      true,
	}); err != nil {
		s.discard(ctx, cover.Key)
		return nil, domain.Internal(err, op, "failed to store cover thumbnail")
	}

	// Replaced files are purged once the new keys are committed.
	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		n, err := q.SetPostCover(ctx, repository.SetPostCoverParams{
			ID:       postID,
			CoverKey: domain.ToNullString(cover.Key),
			ThumbKey: domain.ToNullString(cover.ThumbKey),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to save cover")
		}
		if n == 0 {
			return domain.NotFound(op, "post", postID.String())
		}

		stale := []string{
			domain.NullStringValue(row.Post.CoverKey),
			domain.NullStringValue(row.Post.ThumbKey),
		}
		if _, _, err := worker.EnqueuePurgeFiles(ctx, q, stale); err != nil {
			return domain.Internal(err, op, "failed to schedule removal of the previous cover")
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, cover.Key)
		s.discard(ctx, cover.ThumbKey)
		return nil, err
	}

	if cover.URL, err = s.storage.URL(ctx, cover.Key, coverURLExpiry); err != nil {
		return nil, domain.Internal(err, op, "failed to resolve cover URL")
	}
	if cover.ThumbURL, err = s.storage.URL(ctx, cover.ThumbKey, coverURLExpiry); err != nil {
		return nil, domain.Internal(err, op, "failed to resolve thumbnail URL")
	}

	metrics.CoversUploaded.Inc()
	s.logger.Info("cover uploaded",
		"post_id", postID,
		"key", cover.Key,
		"size", len(raw),
		"content_type", contentType,
	)

	return cover, nil
}

// discard deletes a file written by a failed upload, logging failures.
func (s *coverService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete cover file", "key", key, "error", err)
	}
}
