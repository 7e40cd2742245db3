package service

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"strings"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/repository"
	"github.com/DukeRupert/blog/internal/worker"
)

// CommentService defines the interface for comment operations.
type CommentService interface {
	// Create validates and stores a comment.
	// Returns a *domain.ValidationError with per-field messages when the
	// input is invalid, and domain.ENOTFOUND if the post does not exist.
	Create(ctx context.Context, params domain.CreateCommentParams) (*domain.Comment, error)

	// ListByPost returns the comments on a post, newest first.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)

	// Count returns the number of comments on a post.
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
}

// commentService implements the CommentService interface.
type commentService struct {
	store  repository.Store
	logger *slog.Logger
	notify bool
}

// CommentOption configures a CommentService.
type CommentOption func(*commentService)

// WithCommentNotifications makes Create enqueue an email to the blog owner
// in the same transaction as the comment.
func WithCommentNotifications() CommentOption {
	return func(s *commentService) {
		s.notify = true
	}
}

// NewCommentService creates a new CommentService.
func NewCommentService(store repository.Store, logger *slog.Logger, opts ...CommentOption) CommentService {
	s := &commentService{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *commentService) Create(ctx context.Context, params domain.CreateCommentParams) (*domain.Comment, error) {
	const op = "comment.create"

	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.URL = strings.TrimSpace(params.URL)
	params.Text = strings.TrimSpace(params.Text)
	if err := validateStruct(op, params); err != nil {
		return nil, err
	}

	var row repository.Comment
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		row, err = q.CreateComment(ctx, repository.CreateCommentParams{
			PostID:    params.PostID,
			Name:      params.Name,
			Email:     params.Email,
			Url:       domain.ToNullString(params.URL),
			Text:      params.Text,
			IpAddress: toInet(params.IPAddress),
		})
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.NotFound(op, "post", params.PostID.String())
			}
			return domain.Internal(err, op, "failed to create comment")
		}

		if !s.notify {
			return nil
		}
		post, err := q.GetPost(ctx, row.PostID)
		if err != nil {
			return domain.Internal(err, op, "failed to get post")
		}
		_, err = worker.EnqueueNotifyComment(ctx, q, worker.NotifyCommentPayload{
			CommentID: row.ID,
			PostID:    row.PostID,
			PostTitle: post.Post.Title,
			Name:      row.Name,
			Email:     row.Email,
			URL:       domain.NullStringValue(row.Url),
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to schedule notification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CommentsCreated.Inc()
	s.logger.Info("comment created",
		"comment_id", row.ID,
		"post_id", row.PostID,
	)

	comment := toComment(row)
	return &comment, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	const op = "comment.list"

	rows, err := s.store.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list comments")
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, toComment(row))
	}
	return comments, nil
}

func (s *commentService) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	const op = "comment.count"

	n, err := s.store.CountCommentsByPost(ctx, postID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count comments")
	}
	return n, nil
}

// toInet converts an address to the INET column type. The zero Addr maps to NULL.
func toInet(addr netip.Addr) pqtype.Inet {
	if !addr.IsValid() {
		return pqtype.Inet{}
	}
	addr = addr.Unmap()
	return pqtype.Inet{
		IPNet: net.IPNet{
			IP:   net.IP(addr.AsSlice()),
			Mask: net.CIDRMask(addr.BitLen(), addr.BitLen()),
		},
		Valid: true,
	}
}

func toComment(row repository.Comment) domain.Comment {
	c := domain.Comment{
		ID:        row.ID,
		PostID:    row.PostID,
		Name:      row.Name,
		Email:     row.Email,
		URL:       domain.NullStringValue(row.Url),
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}
	if row.IpAddress.Valid {
		c.IPAddress = row.IpAddress.IPNet.IP.String()
	}
	return c
}
