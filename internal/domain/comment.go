package domain

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// Comment is a reader's comment on a post.
type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	Name      string
	Email     string
	URL       string
	Text      string
	IPAddress string
	CreatedAt time.Time
}

// CreateCommentParams contains parameters for posting a comment.
// Field names in the form tags match the comment form inputs.
type CreateCommentParams struct {
	PostID    uuid.UUID  `form:"-" validate:"required"`
	Name      string     `form:"name" validate:"required,max=100"`
	Email     string     `form:"email" validate:"required,email,max=255"`
	URL       string     `form:"url" validate:"omitempty,url,max=200"`
	Text      string     `form:"text" validate:"required,max=5000"`
	IPAddress netip.Addr `form:"-" validate:"-"`
}
