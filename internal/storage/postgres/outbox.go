package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

type outboxRepository struct {
	q querier
}

const outboxColumns = `id, kind, payload, attempts, next_attempt_at, last_error, dead, created_at, processed_at`

func scanOutbox(row scanner, m *model.OutboxMessage) error {
	var payload []byte
	if err := row.Scan(&m.ID, &m.Kind, &payload, &m.Attempts, &m.NextAttemptAt, &m.LastError,
		&m.Dead, &m.CreatedAt, &m.ProcessedAt); err != nil {
		return err
	}
	m.Payload = payload
	return nil
}

func (r *outboxRepository) Enqueue(ctx context.Context, messages ...model.OutboxMessage) error {
	const query = `INSERT INTO outbox (id, kind, payload, next_attempt_at) VALUES ($1, $2, $3, $4)`
	for _, m := range messages {
		next := m.NextAttemptAt
		if next.IsZero() {
			next = time.Now()
		}
		if _, err := r.q.Exec(ctx, query, m.ID, m.Kind, []byte(m.Payload), next); err != nil {
			return mapError(err)
		}
	}
	return nil
}

// ClaimBatch leases due messages with a single statement so concurrent relays never share a row.
func (r *outboxRepository) ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error) {
	const query = `UPDATE outbox SET next_attempt_at = NOW() + make_interval(secs => $1)
                   WHERE id IN (
                       SELECT id FROM outbox
                       WHERE processed_at IS NULL AND NOT dead AND next_attempt_at <= NOW()
                       ORDER BY next_attempt_at
                       LIMIT $2
                       FOR UPDATE SKIP LOCKED
                   )
                   RETURNING ` + outboxColumns
	rows, err := r.q.Query(ctx, query, lease.Seconds(), limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOutbox)
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE outbox SET processed_at=NOW(), last_error='' WHERE id=$1`
	_, err := r.q.Exec(ctx, query, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, lastError string, dead bool) error {
	const query = `UPDATE outbox SET attempts=$1, next_attempt_at=$2, last_error=$3, dead=$4 WHERE id=$5`
	_, err := r.q.Exec(ctx, query, attempts, nextAttempt, lastError, dead, id)
	return err
}

func (r *outboxRepository) PurgeProcessed(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM outbox WHERE processed_at IS NOT NULL AND processed_at < $1`
	tag, err := r.q.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
