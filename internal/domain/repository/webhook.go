package repository

import (
	"context"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// WebhookEventRepository remembers processed notifications.
type WebhookEventRepository interface {
	// Record returns ErrAlreadyExists when the event was seen before.
	Record(ctx context.Context, event model.WebhookEvent) error
	RecordFailure(ctx context.Context, event model.WebhookEvent) error
	Purge(ctx context.Context, before time.Time) (int64, error)
}
