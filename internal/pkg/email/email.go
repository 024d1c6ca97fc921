package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
	maxRetries  = 3
)

type Config struct {
	APIKey      string
	FromName    string
	FromAddress string
	// Host overrides the API host, mostly for tests.
	Host string
}

// EmailService sends transactional mail through the SendGrid v3 API.
type EmailService interface {
	SendPasswordReset(ctx context.Context, to, name, resetLink, expiresAt string) error
}

type emailServiceImpl struct {
	cfg        Config
	from       *sgmail.Email
	templates  *template.Template
	retryDelay time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg Config) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	return &emailServiceImpl{
		cfg:        cfg,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		templates:  tmpl,
		retryDelay: time.Second,
	}, nil
}

type passwordResetEmailData struct {
	Name      string
	ResetLink string
	ExpiresAt string
}

// SendPasswordReset sends a password reset email to the user
func (s *emailServiceImpl) SendPasswordReset(ctx context.Context, to, name, resetLink, expiresAt string) error {
	data := passwordResetEmailData{
		Name:      name,
		ResetLink: resetLink,
		ExpiresAt: expiresAt,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "password_reset.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	text := fmt.Sprintf("Reset your password: %s (expires %s)", resetLink, expiresAt)
	return s.send(ctx, to, name, "Reset your password", text, body.String())
}

func (s *emailServiceImpl) message(to, name, subject, text, html string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(name, to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", html),
	)
	return m
}

func (s *emailServiceImpl) send(ctx context.Context, to, name, subject, text, html string) error {
	// Skip sending if the API key is not configured
	if s.cfg.APIKey == "" {
		slog.Warn("SendGrid not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	payload := sgmail.GetRequestBody(s.message(to, name, subject, text, html))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req := sendgrid.GetRequest(s.cfg.APIKey, endpoint, s.cfg.Host)
		req.Method = http.MethodPost
		req.Body = payload

		res, err := sendgrid.API(req)
		if err == nil && res.StatusCode < http.StatusBadRequest {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}
		if err == nil {
			err = fmt.Errorf("sendgrid responded with status %d", res.StatusCode)
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// exponential backoff: 1x, 2x, 4x
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay << (attempt - 1)):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
