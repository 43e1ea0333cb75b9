package usecase

import (
	"context"
	"io"
	"time"

	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// PaymentProcessor is the payment provider as the marketplace sees it.
type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, req model.PaymentRequest) (*model.PaymentIntent, error)
	Refund(ctx context.Context, req model.RefundRequest) error
	CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error)
	AvailableBalance(ctx context.Context, currency string) (int64, error)
	ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error)
}

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, email model.Email) error
}

// ObjectStore keeps delivered videos.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// OrderNumberGenerator yields unique human-readable order numbers.
type OrderNumberGenerator interface {
	Next() string
}

// Settings are the business knobs shared by use cases.
type Settings struct {
	Currency          string
	MaxRevisions      int
	Sandbox           bool
	OutboxLease       time.Duration
	OutboxMaxAttempts int
	OrderPaymentTTL   time.Duration
	RetentionPeriod   time.Duration
	VideoURLTTL       time.Duration
}

const (
	defaultOutboxLease = time.Minute
	defaultVideoURLTTL = time.Hour
)

// NewSettings derives use case settings from configuration.
func NewSettings(cfg *config.Config) Settings {
	return Settings{
		Currency:          cfg.Currency,
		MaxRevisions:      cfg.MaxRevisions,
		Sandbox:           cfg.PaymentsSandbox,
		OutboxLease:       defaultOutboxLease,
		OutboxMaxAttempts: cfg.OutboxMaxAttempts,
		OrderPaymentTTL:   cfg.OrderPaymentTTL,
		RetentionPeriod:   cfg.RetentionPeriod,
		VideoURLTTL:       defaultVideoURLTTL,
	}
}
