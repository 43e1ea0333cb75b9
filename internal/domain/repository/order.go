package repository

import (
	"context"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
// Lock* methods take a row lock and are meant to be used inside a transaction.
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Order, error)
	LockByID(ctx context.Context, id int64) (*model.Order, error)
	LockByNumber(ctx context.Context, number string) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	AddTip(ctx context.Context, orderID, cents int64) error
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	ListByCelebrity(ctx context.Context, celebrityID int64) ([]model.Order, error)
	ListByState(ctx context.Context, state model.OrderState, limit int) ([]model.Order, error)
	ListUnpaidBefore(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
}
