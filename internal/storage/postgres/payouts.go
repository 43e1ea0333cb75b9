package postgres

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

type payoutRepository struct {
	q querier
}

const payoutColumns = `id, order_id, tip_id, celebrity_id, amount_cents, platform_fee_cents, status, simulated, created_at, updated_at`

func scanPayout(row scanner, p *model.Payout) error {
	return row.Scan(&p.ID, &p.OrderID, &p.TipID, &p.CelebrityID, &p.AmountCents, &p.PlatformFeeCents,
		&p.Status, &p.Simulated, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts the payout and its transfer. Callers run it inside a transaction;
// a tip pays out at most once.
func (r *payoutRepository) Create(ctx context.Context, payout model.Payout, transfer model.Transfer) (*model.Payout, *model.Transfer, error) {
	const insertPayout = `INSERT INTO payouts (order_id, tip_id, celebrity_id, amount_cents, platform_fee_cents, status, simulated)
                          VALUES ($1, $2, $3, $4, $5, $6, $7)
                          RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, insertPayout, payout.OrderID, payout.TipID, payout.CelebrityID, payout.AmountCents,
		payout.PlatformFeeCents, payout.Status, payout.Simulated,
	).Scan(&payout.ID, &payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		return nil, nil, mapError(err)
	}

	const insertTransfer = `INSERT INTO transfers (payout_id, external_id, destination, amount_cents, status, simulated, failure_reason)
                            VALUES ($1, $2, $3, $4, $5, $6, $7)
                            RETURNING id, created_at, updated_at`
	transfer.PayoutID = payout.ID
	err = r.q.QueryRow(ctx, insertTransfer, transfer.PayoutID, transfer.ExternalID, transfer.Destination,
		transfer.AmountCents, transfer.Status, transfer.Simulated, transfer.FailureReason,
	).Scan(&transfer.ID, &transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		return nil, nil, mapError(err)
	}
	return &payout, &transfer, nil
}

func (r *payoutRepository) UpdateTransferStatus(ctx context.Context, externalID string, status model.TransferStatus, failureReason string) (*model.Payout, bool, error) {
	const lockTransfer = `SELECT payout_id, status FROM transfers WHERE external_id=$1 FOR UPDATE`
	var (
		payoutID int64
		current  model.TransferStatus
	)
	if err := r.q.QueryRow(ctx, lockTransfer, externalID).Scan(&payoutID, &current); err != nil {
		return nil, false, mapError(err)
	}

	var p model.Payout
	if !status.Supersedes(current) {
		const selectPayout = `SELECT ` + payoutColumns + ` FROM payouts WHERE id=$1`
		if err := scanPayout(r.q.QueryRow(ctx, selectPayout, payoutID), &p); err != nil {
			return nil, false, mapError(err)
		}
		return &p, false, nil
	}

	const updateTransfer = `UPDATE transfers SET status=$1, failure_reason=$2, updated_at=NOW() WHERE external_id=$3`
	if _, err := r.q.Exec(ctx, updateTransfer, status, failureReason, externalID); err != nil {
		return nil, false, err
	}

	const updatePayout = `UPDATE payouts SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + payoutColumns
	if err := scanPayout(r.q.QueryRow(ctx, updatePayout, status, payoutID), &p); err != nil {
		return nil, false, mapError(err)
	}
	return &p, true, nil
}

func (r *payoutRepository) ListByCelebrity(ctx context.Context, celebrityID int64) ([]model.Payout, error) {
	const query = `SELECT ` + payoutColumns + ` FROM payouts WHERE celebrity_id=$1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, celebrityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayout)
}
