package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// DatabasePinger reports primary database health.
type DatabasePinger interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger reports idempotency store health.
type CachePinger interface {
	HealthCheck(ctx context.Context) error
}

// FacadeParams collects the use cases behind the marketplace facade.
type FacadeParams struct {
	fx.In

	Auth        *usecase.AuthUseCase
	Celebrities *usecase.CelebrityUseCase
	Checkout    *usecase.CheckoutUseCase
	Bookings    *usecase.BookingUseCase
	Delivery    *usecase.DeliveryUseCase
	Approval    *usecase.ApprovalUseCase
	Tips        *usecase.TipUseCase
	Reviews     *usecase.ReviewUseCase
	Orders      *usecase.OrderUseCase
	Webhooks    *usecase.WebhookUseCase
	Outbox      *usecase.OutboxUseCase
	Maintenance *usecase.MaintenanceUseCase
	Database    DatabasePinger
	Cache       CachePinger
}

// MarketplaceFacade is the single entry point used by HTTP handlers and background workers.
type MarketplaceFacade struct {
	p FacadeParams
}

func NewMarketplaceFacade(p FacadeParams) *MarketplaceFacade {
	return &MarketplaceFacade{p: p}
}

func (f *MarketplaceFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	return f.p.Auth.Register(ctx, in)
}

func (f *MarketplaceFacade) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	return f.p.Auth.Authenticate(ctx, login, password)
}

func (f *MarketplaceFacade) ParseToken(token string) (model.Identity, error) {
	return f.p.Auth.ParseToken(token)
}

func (f *MarketplaceFacade) Celebrities(ctx context.Context, limit, offset int) ([]model.Celebrity, error) {
	return f.p.Celebrities.List(ctx, limit, offset)
}

func (f *MarketplaceFacade) Celebrity(ctx context.Context, slug string) (*model.Celebrity, error) {
	return f.p.Celebrities.Profile(ctx, slug)
}

func (f *MarketplaceFacade) CelebrityReviews(ctx context.Context, slug string, limit int) ([]model.Review, error) {
	return f.p.Celebrities.Reviews(ctx, slug, limit)
}

func (f *MarketplaceFacade) Onboard(ctx context.Context, userID int64, displayName string, priceCents int64) (*model.Celebrity, error) {
	return f.p.Celebrities.Onboard(ctx, userID, displayName, priceCents)
}

func (f *MarketplaceFacade) SetPayoutAccount(ctx context.Context, userID int64, accountID string) (*model.Celebrity, error) {
	return f.p.Celebrities.SetPayoutAccount(ctx, userID, accountID)
}

func (f *MarketplaceFacade) BookingRequests(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.p.Orders.ListForCelebrity(ctx, userID)
}

func (f *MarketplaceFacade) DecideBooking(ctx context.Context, userID, orderID int64, action usecase.BookingAction) (*model.Order, error) {
	return f.p.Bookings.Decide(ctx, userID, orderID, action)
}

func (f *MarketplaceFacade) DeliverVideo(ctx context.Context, userID, orderID int64, video usecase.VideoUpload) (*model.Order, error) {
	return f.p.Delivery.Deliver(ctx, userID, orderID, video)
}

func (f *MarketplaceFacade) Checkout(ctx context.Context, customerID int64, slug string, details model.OrderDetails) (*usecase.CheckoutResult, error) {
	return f.p.Checkout.Checkout(ctx, customerID, slug, details)
}

func (f *MarketplaceFacade) CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	return f.p.Orders.ListForCustomer(ctx, customerID)
}

func (f *MarketplaceFacade) Order(ctx context.Context, who model.Identity, number string) (*model.Order, error) {
	return f.p.Orders.Get(ctx, who, number)
}

func (f *MarketplaceFacade) OrdersByState(ctx context.Context, state string) ([]model.Order, error) {
	return f.p.Orders.ListByState(ctx, state)
}

func (f *MarketplaceFacade) ApproveDelivery(ctx context.Context, customerID int64, number string, in usecase.ApproveInput) (*usecase.ApprovalResult, error) {
	return f.p.Approval.Approve(ctx, customerID, number, in)
}

func (f *MarketplaceFacade) DeclineDelivery(ctx context.Context, customerID int64, number string, reasons []string, feedback string) (*model.Order, error) {
	return f.p.Approval.Decline(ctx, customerID, number, reasons, feedback)
}

func (f *MarketplaceFacade) VideoURL(ctx context.Context, customerID int64, number string) (string, error) {
	return f.p.Delivery.VideoURL(ctx, customerID, number)
}

func (f *MarketplaceFacade) Review(ctx context.Context, customerID int64, number string, rating int, comment string) (*model.Review, error) {
	return f.p.Reviews.Create(ctx, customerID, number, rating, comment)
}

func (f *MarketplaceFacade) Tip(ctx context.Context, customerID int64, number string, amount decimal.Decimal, message string) (*usecase.TipResult, error) {
	return f.p.Tips.Create(ctx, customerID, number, amount, message)
}

func (f *MarketplaceFacade) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	return f.p.Webhooks.Handle(ctx, payload, signature)
}

// Health pings every backing service and reports per component results.
func (f *MarketplaceFacade) Health(ctx context.Context) (map[string]string, bool) {
	checks := map[string]func(context.Context) error{
		"database": f.p.Database.HealthCheck,
		"redis":    f.p.Cache.HealthCheck,
	}
	report := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			report[name] = err.Error()
			healthy = false
			continue
		}
		report[name] = "ok"
	}
	return report, healthy
}

func (f *MarketplaceFacade) ClaimOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	return f.p.Outbox.Claim(ctx, limit)
}

func (f *MarketplaceFacade) DeliverOutbox(ctx context.Context, msg model.OutboxMessage) error {
	return f.p.Outbox.Deliver(ctx, msg)
}

func (f *MarketplaceFacade) CompleteOutbox(ctx context.Context, msg model.OutboxMessage) error {
	return f.p.Outbox.Complete(ctx, msg)
}

func (f *MarketplaceFacade) FailOutbox(ctx context.Context, msg model.OutboxMessage, cause error, retryIn time.Duration) error {
	return f.p.Outbox.Fail(ctx, msg, cause, retryIn)
}

func (f *MarketplaceFacade) ExpireUnpaidOrders(ctx context.Context) (int, error) {
	return f.p.Maintenance.ExpireAbandoned(ctx)
}

func (f *MarketplaceFacade) PurgeRetention(ctx context.Context) (int64, int64, error) {
	return f.p.Maintenance.Purge(ctx)
}
