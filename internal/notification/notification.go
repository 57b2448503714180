package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doimih/mini-crm/internal/config"
	"github.com/doimih/mini-crm/internal/modules/emailconfig"
)

// Mailer dispatches the auth core's outbound mail. The core only asks it to
// deliver a message; deliverability is otherwise the operator's concern.
type Mailer interface {
	// IsConfigured reports whether any outbound-mail settings exist.
	// Registration is refused when it returns false.
	IsConfigured(ctx context.Context) bool

	SendVerificationEmail(ctx context.Context, to, token, userID string) error
	SendPasswordResetEmail(ctx context.Context, to, token, userID string) error
}

// settings is the resolved SMTP configuration from either source.
type settings struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
}

type mailer struct {
	smtp   config.SMTPConfig
	store  emailconfig.Repository
	appURL string
	log    *slog.Logger
}

// NewMailer creates a mailer that prefers SMTP_* environment settings and
// falls back to the email_config table.
func NewMailer(smtp config.SMTPConfig, store emailconfig.Repository, appURL string, log *slog.Logger) Mailer {
	return &mailer{
		smtp:   smtp,
		store:  store,
		appURL: appURL,
		log:    log,
	}
}

func (m *mailer) resolve(ctx context.Context) (*settings, error) {
	if m.smtp.Host != "" {
		return &settings{
			Host:     m.smtp.Host,
			Port:     m.smtp.Port,
			Secure:   m.smtp.Secure,
			Username: m.smtp.Username,
			Password: m.smtp.Password,
			From:     m.smtp.From,
		}, nil
	}

	cfg, err := m.store.Get(ctx)
	if err != nil {
		if errors.Is(err, emailconfig.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s := &settings{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Secure: cfg.Secure,
	}
	if cfg.Username != nil {
		s.Username = *cfg.Username
	}
	if cfg.Password != nil {
		s.Password = *cfg.Password
	}
	if cfg.From != nil {
		s.From = *cfg.From
	}
	return s, nil
}

func (m *mailer) IsConfigured(ctx context.Context) bool {
	s, err := m.resolve(ctx)
	if err != nil {
		m.log.Error("failed to resolve email configuration", "error", err)
		return false
	}
	return s != nil
}

func (m *mailer) SendVerificationEmail(ctx context.Context, to, token, userID string) error {
	verifyURL := fmt.Sprintf("%s/verify?token=%s", m.appURL, token)
	body := fmt.Sprintf(`<p>Please verify your email by clicking the link below:</p>
<p><a href="%s">%s</a></p>`, verifyURL, verifyURL)

	return m.send(ctx, to, "Verify your email", body, userID)
}

func (m *mailer) SendPasswordResetEmail(ctx context.Context, to, token, userID string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token)
	body := fmt.Sprintf(`<p>You requested a password reset. The link below is valid for one hour:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>`, resetURL, resetURL)

	return m.send(ctx, to, "Reset your password", body, userID)
}
