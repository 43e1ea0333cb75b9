package postgres

import (
	"context"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

type webhookEventRepository struct {
	q querier
}

func (r *webhookEventRepository) Record(ctx context.Context, event model.WebhookEvent) error {
	const query = `INSERT INTO webhook_events (provider, event_id, type, received_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, event.Provider, event.EventID, event.Type, event.ReceivedAt)
	return mapError(err)
}

// RecordFailure stores an event whose processing was rolled back so redeliveries are acknowledged.
func (r *webhookEventRepository) RecordFailure(ctx context.Context, event model.WebhookEvent) error {
	const query = `INSERT INTO webhook_events (provider, event_id, type, received_at, processing_error)
                   VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (provider, event_id) DO UPDATE SET processing_error = EXCLUDED.processing_error`
	_, err := r.q.Exec(ctx, query, event.Provider, event.EventID, event.Type, event.ReceivedAt, event.ProcessingError)
	return err
}

func (r *webhookEventRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM webhook_events WHERE received_at < $1`
	tag, err := r.q.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
