package mailer

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, email model.Email) error
}

// Module provides an SMTP mailer, or a logging one when SMTP is not configured.
var Module = fx.Provide(newSender)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) Sender {
	if p.Config.SMTPHost == "" {
		p.Logger.Info("SMTP_HOST is empty, emails will be logged only")
		return NewLogMailer(p.Logger)
	}
	return NewSMTPMailer(p.Config.SMTPHost, p.Config.SMTPPort, p.Config.SMTPUsername,
		p.Config.SMTPPassword, p.Config.MailFrom, p.Logger)
}
