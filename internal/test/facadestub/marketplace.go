// Package facadestub holds the HTTP facade test double. It lives apart from
// package test because it depends on use case result types.
package facadestub

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/shoutout/internal/domain/model"
	testhelpers "github.com/polkiloo/shoutout/internal/test"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// MarketplaceFacadeStub provides controllable behaviour for HTTP endpoints.
// Unset functions return small canned values.
type MarketplaceFacadeStub struct {
	RegisterFn         func(context.Context, usecase.RegisterInput) (*model.User, string, error)
	AuthenticateFn     func(context.Context, string, string) (*model.User, string, error)
	ParseTokenFn       func(string) (model.Identity, error)
	CelebritiesFn      func(context.Context, int, int) ([]model.Celebrity, error)
	CelebrityFn        func(context.Context, string) (*model.Celebrity, error)
	CelebrityReviewsFn func(context.Context, string, int) ([]model.Review, error)
	OnboardFn          func(context.Context, int64, string, int64) (*model.Celebrity, error)
	SetPayoutFn        func(context.Context, int64, string) (*model.Celebrity, error)
	BookingRequestsFn  func(context.Context, int64) ([]model.Order, error)
	DecideBookingFn    func(context.Context, int64, int64, usecase.BookingAction) (*model.Order, error)
	DeliverVideoFn     func(context.Context, int64, int64, usecase.VideoUpload) (*model.Order, error)
	CheckoutFn         func(context.Context, int64, string, model.OrderDetails) (*usecase.CheckoutResult, error)
	CustomerOrdersFn   func(context.Context, int64) ([]model.Order, error)
	OrderFn            func(context.Context, model.Identity, string) (*model.Order, error)
	OrdersByStateFn    func(context.Context, string) ([]model.Order, error)
	ApproveFn          func(context.Context, int64, string, usecase.ApproveInput) (*usecase.ApprovalResult, error)
	DeclineFn          func(context.Context, int64, string, []string, string) (*model.Order, error)
	VideoURLFn         func(context.Context, int64, string) (string, error)
	ReviewFn           func(context.Context, int64, string, int, string) (*model.Review, error)
	TipFn              func(context.Context, int64, string, decimal.Decimal, string) (*usecase.TipResult, error)
	HandleEventFn      func(context.Context, []byte, string) error
	HealthFn           func(context.Context) (map[string]string, bool)
}

func (s MarketplaceFacadeStub) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return &model.User{ID: 1, Login: in.Login, Role: model.RoleCustomer}, "token", nil
}

func (s MarketplaceFacadeStub) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return &model.User{ID: 1, Login: login, Role: model.RoleCustomer}, "token", nil
}

// ParseToken defaults to the "token-<id>-<role>" format issued by StrategyStub.
func (s MarketplaceFacadeStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return testhelpers.StrategyStub{}.ParseToken(token)
}

func (s MarketplaceFacadeStub) Celebrities(ctx context.Context, limit, offset int) ([]model.Celebrity, error) {
	if s.CelebritiesFn != nil {
		return s.CelebritiesFn(ctx, limit, offset)
	}
	return []model.Celebrity{{ID: 1, Slug: "jane-star", DisplayName: "Jane Star", PriceCents: 30000}}, nil
}

func (s MarketplaceFacadeStub) Celebrity(ctx context.Context, slug string) (*model.Celebrity, error) {
	if s.CelebrityFn != nil {
		return s.CelebrityFn(ctx, slug)
	}
	return &model.Celebrity{ID: 1, Slug: slug, DisplayName: "Jane Star", PriceCents: 30000}, nil
}

func (s MarketplaceFacadeStub) CelebrityReviews(ctx context.Context, slug string, limit int) ([]model.Review, error) {
	if s.CelebrityReviewsFn != nil {
		return s.CelebrityReviewsFn(ctx, slug, limit)
	}
	return nil, nil
}

func (s MarketplaceFacadeStub) Onboard(ctx context.Context, userID int64, displayName string, priceCents int64) (*model.Celebrity, error) {
	if s.OnboardFn != nil {
		return s.OnboardFn(ctx, userID, displayName, priceCents)
	}
	return &model.Celebrity{ID: 1, UserID: userID, Slug: "jane-star", DisplayName: displayName, PriceCents: priceCents}, nil
}

func (s MarketplaceFacadeStub) SetPayoutAccount(ctx context.Context, userID int64, accountID string) (*model.Celebrity, error) {
	if s.SetPayoutFn != nil {
		return s.SetPayoutFn(ctx, userID, accountID)
	}
	return &model.Celebrity{ID: 1, UserID: userID, PayoutAccountID: accountID}, nil
}

func (s MarketplaceFacadeStub) BookingRequests(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.BookingRequestsFn != nil {
		return s.BookingRequestsFn(ctx, userID)
	}
	return nil, nil
}

func (s MarketplaceFacadeStub) DecideBooking(ctx context.Context, userID, orderID int64, action usecase.BookingAction) (*model.Order, error) {
	if s.DecideBookingFn != nil {
		return s.DecideBookingFn(ctx, userID, orderID, action)
	}
	return &model.Order{ID: orderID, State: model.OrderStateConfirmed}, nil
}

func (s MarketplaceFacadeStub) DeliverVideo(ctx context.Context, userID, orderID int64, video usecase.VideoUpload) (*model.Order, error) {
	if s.DeliverVideoFn != nil {
		return s.DeliverVideoFn(ctx, userID, orderID, video)
	}
	return &model.Order{ID: orderID, State: model.OrderStateDelivered, VideoKey: video.Filename}, nil
}

func (s MarketplaceFacadeStub) Checkout(ctx context.Context, customerID int64, slug string, details model.OrderDetails) (*usecase.CheckoutResult, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, customerID, slug, details)
	}
	return &usecase.CheckoutResult{
		Order:        &model.Order{ID: 1, Number: "1", CustomerID: customerID, State: model.OrderStatePendingPayment},
		ClientSecret: "secret",
	}, nil
}

func (s MarketplaceFacadeStub) CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.CustomerOrdersFn != nil {
		return s.CustomerOrdersFn(ctx, customerID)
	}
	return nil, nil
}

func (s MarketplaceFacadeStub) Order(ctx context.Context, who model.Identity, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, who, number)
	}
	return &model.Order{Number: number, CustomerID: who.UserID}, nil
}

func (s MarketplaceFacadeStub) OrdersByState(ctx context.Context, state string) ([]model.Order, error) {
	if s.OrdersByStateFn != nil {
		return s.OrdersByStateFn(ctx, state)
	}
	return nil, nil
}

func (s MarketplaceFacadeStub) ApproveDelivery(ctx context.Context, customerID int64, number string, in usecase.ApproveInput) (*usecase.ApprovalResult, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, customerID, number, in)
	}
	return &usecase.ApprovalResult{Order: &model.Order{Number: number, State: model.OrderStateApproved}}, nil
}

func (s MarketplaceFacadeStub) DeclineDelivery(ctx context.Context, customerID int64, number string, reasons []string, feedback string) (*model.Order, error) {
	if s.DeclineFn != nil {
		return s.DeclineFn(ctx, customerID, number, reasons, feedback)
	}
	return &model.Order{Number: number, State: model.OrderStateRevisionRequested}, nil
}

func (s MarketplaceFacadeStub) VideoURL(ctx context.Context, customerID int64, number string) (string, error) {
	if s.VideoURLFn != nil {
		return s.VideoURLFn(ctx, customerID, number)
	}
	return "https://videos.example.com/" + number, nil
}

func (s MarketplaceFacadeStub) Review(ctx context.Context, customerID int64, number string, rating int, comment string) (*model.Review, error) {
	if s.ReviewFn != nil {
		return s.ReviewFn(ctx, customerID, number, rating, comment)
	}
	return &model.Review{ID: 1, UserID: customerID, Rating: rating, Comment: comment}, nil
}

func (s MarketplaceFacadeStub) Tip(ctx context.Context, customerID int64, number string, amount decimal.Decimal, message string) (*usecase.TipResult, error) {
	if s.TipFn != nil {
		return s.TipFn(ctx, customerID, number, amount, message)
	}
	tip := model.Tip{ID: 1, UserID: customerID, AmountCents: model.CentsFromDecimal(amount), Message: message, PaymentStatus: model.PaymentPending}
	return &usecase.TipResult{Tip: &tip, ClientSecret: "secret"}, nil
}

func (s MarketplaceFacadeStub) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	if s.HandleEventFn != nil {
		return s.HandleEventFn(ctx, payload, signature)
	}
	return nil
}

func (s MarketplaceFacadeStub) Health(ctx context.Context) (map[string]string, bool) {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return map[string]string{"database": "ok", "redis": "ok"}, true
}
