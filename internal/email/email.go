// Package email sends the blog's notification emails.
//
// Only the SMTP implementation exists. It works with Mailhog in development
// and with any authenticated SMTP relay in production.
package email

import (
	"context"
	"time"
)

// EmailService defines the interface for sending notification emails.
type EmailService interface {
	// SendCommentNotification tells the blog owner at to that a comment
	// was posted.
	SendCommentNotification(ctx context.Context, to string, n CommentNotification) error
}

// CommentNotification describes a newly posted comment.
type CommentNotification struct {
	PostTitle string
	PostPath  string // e.g. "/posts/{id}", joined to the base URL
	Name      string
	Email     string
	URL       string
	Text      string
	CreatedAt time.Time
}

// Email represents a single email message.
type Email struct {
	To       string // Recipient email address
	Subject  string // Email subject line
	HTMLBody string // HTML content of the email
	TextBody string // Plain text fallback content
}

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

const (
	DefaultFromEmail = "noreply@localhost"
	DefaultFromName  = "Blog"
)
