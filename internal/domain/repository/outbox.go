package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// OutboxRepository queues side effects for the relay worker.
type OutboxRepository interface {
	Enqueue(ctx context.Context, messages ...model.OutboxMessage) error
	// ClaimBatch returns due messages and pushes their next attempt by lease so
	// concurrent relays do not pick them up twice.
	ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, lastError string, dead bool) error
	PurgeProcessed(ctx context.Context, before time.Time) (int64, error)
}
