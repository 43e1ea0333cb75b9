package postgres

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, number, customer_id, celebrity_id, recipient_name, occasion, instructions,
       total_cents, celebrity_cents, platform_fee_cents, tip_cents, state, cancel_reason,
       refund_status, transfer_status, revision_count, transfer_attempts, video_key, payment_intent_id,
       approved_at, created_at, updated_at`

func scanOrder(row scanner, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.CelebrityID, &o.RecipientName, &o.Occasion, &o.Instructions,
		&o.TotalCents, &o.CelebrityCents, &o.PlatformFeeCents, &o.TipCents, &o.State, &o.CancelReason,
		&o.RefundStatus, &o.TransferStatus, &o.RevisionCount, &o.TransferAttempts, &o.VideoKey, &o.PaymentIntentID,
		&o.ApprovedAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (number, customer_id, celebrity_id, recipient_name, occasion, instructions,
                       total_cents, celebrity_cents, platform_fee_cents, state, refund_status, payment_intent_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                   RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		order.Number, order.CustomerID, order.CelebrityID, order.RecipientName, order.Occasion, order.Instructions,
		order.TotalCents, order.CelebrityCents, order.PlatformFeeCents, order.State, order.RefundStatus, order.PaymentIntentID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

func (r *orderRepository) getOne(ctx context.Context, where string, arg any) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where
	var o model.Order
	if err := scanOrder(r.q.QueryRow(ctx, query, arg), &o); err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `id=$1`, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.getOne(ctx, `number=$1`, number)
}

func (r *orderRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.getOne(ctx, `payment_intent_id=$1`, paymentIntentID)
}

func (r *orderRepository) LockByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `id=$1 FOR UPDATE`, id)
}

func (r *orderRepository) LockByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.getOne(ctx, `number=$1 FOR UPDATE`, number)
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders SET state=$1, cancel_reason=$2, refund_status=$3, transfer_status=$4,
                       revision_count=$5, video_key=$6, payment_intent_id=$7, celebrity_cents=$8,
                       platform_fee_cents=$9, approved_at=$10, transfer_attempts=$11, updated_at=NOW()
                   WHERE id=$12
                   RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		order.State, order.CancelReason, order.RefundStatus, order.TransferStatus,
		order.RevisionCount, order.VideoKey, order.PaymentIntentID, order.CelebrityCents,
		order.PlatformFeeCents, order.ApprovedAt, order.TransferAttempts, order.ID,
	).Scan(&order.UpdatedAt)
	return mapError(err)
}

func (r *orderRepository) AddTip(ctx context.Context, orderID, cents int64) error {
	const query = `UPDATE orders SET tip_cents = tip_cents + $1, updated_at=NOW() WHERE id=$2`
	tag, err := r.q.Exec(ctx, query, cents, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (r *orderRepository) ListByCelebrity(ctx context.Context, celebrityID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE celebrity_id=$1 ORDER BY created_at DESC`, celebrityID)
}

func (r *orderRepository) ListByState(ctx context.Context, state model.OrderState, limit int) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE state=$1 ORDER BY created_at LIMIT $2`, state, limit)
}

// ListUnpaidBefore locks abandoned checkouts; rows held by another sweeper are skipped.
func (r *orderRepository) ListUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
                        WHERE state='PENDING_PAYMENT' AND created_at < $1
                        ORDER BY created_at
                        LIMIT $2
                        FOR UPDATE SKIP LOCKED`, before, limit)
}
