package repository

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// PayoutRepository stores payouts together with the transfers backing them.
type PayoutRepository interface {
	Create(ctx context.Context, payout model.Payout, transfer model.Transfer) (*model.Payout, *model.Transfer, error)
	// UpdateTransferStatus applies status unless the transfer already moved past
	// it, reporting whether anything changed.
	UpdateTransferStatus(ctx context.Context, externalID string, status model.TransferStatus, failureReason string) (*model.Payout, bool, error)
	ListByCelebrity(ctx context.Context, celebrityID int64) ([]model.Payout, error)
}
