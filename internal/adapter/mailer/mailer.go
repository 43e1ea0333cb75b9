package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// SMTPMailer delivers transactional email through an SMTP relay.
type SMTPMailer struct {
	from   string
	send   func(...*gomail.Message) error
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer that dials host on every send.
func NewSMTPMailer(host string, port int, username, password, from string, logger *slog.Logger) *SMTPMailer {
	dialer := gomail.NewDialer(host, port, username, password)
	return &SMTPMailer{from: from, send: dialer.DialAndSend, logger: logger}
}

// Send delivers email. The context is checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, email model.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email.To == "" {
		return fmt.Errorf("email %q has no recipient", email.Subject)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	m.logger.Debug("email sent", slog.String("to", email.To), slog.String("subject", email.Subject))
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer for environments without SMTP.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email model.Email) error {
	m.logger.Info("email",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("body", email.Body),
	)
	return nil
}
