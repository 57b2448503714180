package notification

import (
	"context"
	"fmt"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// send delivers one HTML email over SMTP. Failed sends are the caller's to
// record; they are never retried here.
func (m *mailer) send(ctx context.Context, to, subject, htmlBody, userID string) error {
	s, err := m.resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve email configuration: %w", err)
	}
	if s == nil {
		return fmt.Errorf("outbound mail is not configured")
	}

	server := mail.NewSMTPClient()
	server.Host = s.Host
	server.Port = s.Port
	server.Username = s.Username
	server.Password = s.Password
	if s.Secure {
		server.Encryption = mail.EncryptionSSLTLS
	} else {
		server.Encryption = mail.EncryptionSTARTTLS
	}
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	from := s.From
	if from == "" {
		from = "no-reply@localhost"
	}

	email := mail.NewMSG()
	email.SetFrom(from).AddTo(to).SetSubject(subject)
	email.SetBody(mail.TextHTML, htmlBody)

	if err := email.Send(client); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("email sent via smtp", "to", to, "subject", subject, "user_id", userID)
	return nil
}
