package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error)
	Authenticate(ctx context.Context, login, password string) (*model.User, string, error)
	ParseToken(token string) (model.Identity, error)
}

// CelebrityFacade covers public profiles and celebrity self-service.
type CelebrityFacade interface {
	Celebrities(ctx context.Context, limit, offset int) ([]model.Celebrity, error)
	Celebrity(ctx context.Context, slug string) (*model.Celebrity, error)
	CelebrityReviews(ctx context.Context, slug string, limit int) ([]model.Review, error)
	Onboard(ctx context.Context, userID int64, displayName string, priceCents int64) (*model.Celebrity, error)
	SetPayoutAccount(ctx context.Context, userID int64, accountID string) (*model.Celebrity, error)
}

// BookingFacade is the celebrity side of an order.
type BookingFacade interface {
	BookingRequests(ctx context.Context, userID int64) ([]model.Order, error)
	DecideBooking(ctx context.Context, userID, orderID int64, action usecase.BookingAction) (*model.Order, error)
	DeliverVideo(ctx context.Context, userID, orderID int64, video usecase.VideoUpload) (*model.Order, error)
}

// OrderFacade is the customer and admin side of an order.
type OrderFacade interface {
	Checkout(ctx context.Context, customerID int64, slug string, details model.OrderDetails) (*usecase.CheckoutResult, error)
	CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error)
	Order(ctx context.Context, who model.Identity, number string) (*model.Order, error)
	OrdersByState(ctx context.Context, state string) ([]model.Order, error)
	ApproveDelivery(ctx context.Context, customerID int64, number string, in usecase.ApproveInput) (*usecase.ApprovalResult, error)
	DeclineDelivery(ctx context.Context, customerID int64, number string, reasons []string, feedback string) (*model.Order, error)
	VideoURL(ctx context.Context, customerID int64, number string) (string, error)
	Review(ctx context.Context, customerID int64, number string, rating int, comment string) (*model.Review, error)
	Tip(ctx context.Context, customerID int64, number string, amount decimal.Decimal, message string) (*usecase.TipResult, error)
}

// WebhookFacade consumes payment processor events.
type WebhookFacade interface {
	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error
}

// HealthFacade reports backing service health.
type HealthFacade interface {
	Health(ctx context.Context) (map[string]string, bool)
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	AuthFacade
	CelebrityFacade
	BookingFacade
	OrderFacade
	WebhookFacade
	HealthFacade
}
