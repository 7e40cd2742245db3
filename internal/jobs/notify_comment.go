package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/blog/internal/email"
	"github.com/DukeRupert/blog/internal/worker"
)

// NotifyCommentHandler emails the blog owner about new comments.
type NotifyCommentHandler struct {
	email  email.EmailService
	to     string
	logger *slog.Logger
}

// NewNotifyCommentHandler creates a handler sending notifications to the
// address to.
func NewNotifyCommentHandler(emailService email.EmailService, to string, logger *slog.Logger) *NotifyCommentHandler {
	return &NotifyCommentHandler{
		email:  emailService,
		to:     to,
		logger: logger,
	}
}

// Type returns the job type identifier.
func (h *NotifyCommentHandler) Type() string {
	return worker.JobTypeNotifyComment
}

// Handle sends the notification email.
func (h *NotifyCommentHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.NotifyCommentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	err := h.email.SendCommentNotification(ctx, h.to, email.CommentNotification{
		PostTitle: p.PostTitle,
		PostPath:  fmt.Sprintf("/posts/%s", p.PostID),
		Name:      p.Name,
		Email:     p.Email,
		URL:       p.URL,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("send comment notification: %w", err)
	}

	h.logger.Info("Comment notification sent", "comment_id", p.CommentID, "post_id", p.PostID)
	return nil
}
