package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

type tipRepository struct {
	q querier
}

const tipColumns = `id, order_id, user_id, celebrity_id, amount_cents, celebrity_cents, platform_fee_cents,
       message, payment_status, payment_intent_id, created_at, updated_at`

func scanTip(row scanner, t *model.Tip) error {
	return row.Scan(&t.ID, &t.OrderID, &t.UserID, &t.CelebrityID, &t.AmountCents, &t.CelebrityCents,
		&t.PlatformFeeCents, &t.Message, &t.PaymentStatus, &t.PaymentIntentID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *tipRepository) Create(ctx context.Context, tip model.Tip) (*model.Tip, error) {
	const query = `INSERT INTO tips (order_id, user_id, celebrity_id, amount_cents, celebrity_cents,
                       platform_fee_cents, message, payment_status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, tip.OrderID, tip.UserID, tip.CelebrityID, tip.AmountCents,
		tip.CelebrityCents, tip.PlatformFeeCents, tip.Message, tip.PaymentStatus,
	).Scan(&tip.ID, &tip.CreatedAt, &tip.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &tip, nil
}

func (r *tipRepository) GetByID(ctx context.Context, id int64) (*model.Tip, error) {
	const query = `SELECT ` + tipColumns + ` FROM tips WHERE id=$1`
	var t model.Tip
	if err := scanTip(r.q.QueryRow(ctx, query, id), &t); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (r *tipRepository) SetPaymentIntent(ctx context.Context, id int64, paymentIntentID string) error {
	const query = `UPDATE tips SET payment_intent_id=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.q.Exec(ctx, query, paymentIntentID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *tipRepository) UpdatePaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	const query = `UPDATE tips SET payment_status=$1, updated_at=NOW() WHERE id=$2 AND payment_status=$3`
	tag, err := r.q.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tipRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Tip, error) {
	const query = `SELECT ` + tipColumns + ` FROM tips WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTip)
}
