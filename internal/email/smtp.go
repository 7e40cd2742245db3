package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"
)

// SMTPEmailService sends emails via SMTP. HTML bodies are rendered from the
// email/*.html templates.
type SMTPEmailService struct {
	config    SMTPConfig
	baseURL   string
	templates *template.Template
	logger    *slog.Logger

	// sendMail is smtp.SendMail, replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPEmailService creates a new SMTP-based email service.
//
// templates must contain email/*.html. baseURL is used to build absolute
// links (e.g. "https://blog.example.com").
func NewSMTPEmailService(
	config SMTPConfig,
	baseURL string,
	templates fs.FS,
	logger *slog.Logger,
) (*SMTPEmailService, error) {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	tmpl, err := template.New("email").Funcs(emailTemplateFuncs()).ParseFS(templates, "email/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPEmailService{
		config:    config,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: tmpl,
		logger:    logger,
		sendMail:  smtp.SendMail,
	}, nil
}

// SendCommentNotification emails the blog owner about a new comment.
func (s *SMTPEmailService) SendCommentNotification(ctx context.Context, to string, n CommentNotification) error {
	email, err := s.composeCommentNotification(to, n)
	if err != nil {
		return err
	}
	return s.send(ctx, email)
}

func (s *SMTPEmailService) composeCommentNotification(to string, n CommentNotification) (Email, error) {
	postURL := s.baseURL + n.PostPath

	data := map[string]interface{}{
		"PostTitle": n.PostTitle,
		"PostURL":   postURL,
		"Name":      n.Name,
		"Email":     n.Email,
		"URL":       n.URL,
		"Text":      n.Text,
		"CreatedAt": n.CreatedAt,
	}

	htmlBody, err := s.renderTemplate("comment_notification.html", data)
	if err != nil {
		return Email{}, fmt.Errorf("failed to render comment notification template: %w", err)
	}

	website := ""
	if n.URL != "" {
		website = fmt.Sprintf("Website: %s\n", n.URL)
	}
	textBody := fmt.Sprintf(`%s <%s> commented on "%s":

%s

%s
Reply or read the thread at %s#comments
`, n.Name, n.Email, n.PostTitle, n.Text, website, postURL)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("New comment on %q", n.PostTitle),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

// send sends an email via SMTP. net/smtp has no context support, so ctx
// is only checked before dialing.
func (s *SMTPEmailService) send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.buildMessage(email)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Mailhog needs no credentials
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := s.sendMail(addr, auth, s.config.From, []string{email.To}, msg); err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw multipart/alternative message.
func (s *SMTPEmailService) buildMessage(email Email) ([]byte, error) {
	var buf bytes.Buffer

	from := fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", headerValue(s.config.FromName)), s.config.From)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(email.To))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(email.Subject)))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "===============BLOG_BOUNDARY==============="
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	buf.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain", email.TextBody},
		{"text/html", email.HTMLBody},
	}
	for _, part := range parts {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=utf-8\r\n", part.contentType)
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		buf.WriteString("\r\n")

		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes(), nil
}

// headerValue strips line breaks so user supplied text cannot add headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// renderTemplate renders an email template with the given data.
func (s *SMTPEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// emailTemplateFuncs returns template functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006 at 15:04 MST")
		},
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

var _ EmailService = (*SMTPEmailService)(nil)
