package repository

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// TipRepository describes persistence operations with tips.
type TipRepository interface {
	Create(ctx context.Context, tip model.Tip) (*model.Tip, error)
	GetByID(ctx context.Context, id int64) (*model.Tip, error)
	SetPaymentIntent(ctx context.Context, id int64, paymentIntentID string) error
	// UpdatePaymentStatus moves the tip from one status to another and reports
	// whether the tip was in the expected status.
	UpdatePaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Tip, error)
}
