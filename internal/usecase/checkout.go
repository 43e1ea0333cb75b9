package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// CheckoutResult is a new order with the secret the client confirms payment with.
type CheckoutResult struct {
	Order        *model.Order
	Celebrity    *model.Celebrity
	ClientSecret string
}

// CheckoutUseCase books a celebrity.
type CheckoutUseCase struct {
	repos     repository.Factory
	processor PaymentProcessor
	numbers   OrderNumberGenerator
	settings  Settings
	logger    *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(repos repository.Factory, processor PaymentProcessor, numbers OrderNumberGenerator, settings Settings, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{repos: repos, processor: processor, numbers: numbers, settings: settings, logger: logger}
}

// Checkout creates an order awaiting payment and the charge for it.
func (u *CheckoutUseCase) Checkout(ctx context.Context, customerID int64, celebritySlug string, details model.OrderDetails) (*CheckoutResult, error) {
	details.RecipientName = strings.TrimSpace(details.RecipientName)
	details.Occasion = strings.TrimSpace(details.Occasion)
	details.Instructions = strings.TrimSpace(details.Instructions)
	if details.RecipientName == "" {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "recipient name is required")
	}

	celeb, err := u.repos.Celebrities().GetBySlug(ctx, celebritySlug)
	if err != nil {
		return nil, err
	}
	if celeb.UserID == customerID {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "you cannot book yourself")
	}

	order := model.NewOrder(u.numbers.Next(), customerID, *celeb, details)

	intent, err := u.processor.CreatePaymentIntent(ctx, model.PaymentRequest{
		AmountCents: order.TotalCents,
		Currency:    u.settings.Currency,
		Description: fmt.Sprintf("Personal video from %s, order %s", celeb.DisplayName, order.Number),
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindBooking,
			model.MetadataOrderNumber: order.Number,
		},
		IdempotencyKey: "checkout-" + order.Number,
	})
	if err != nil {
		return nil, err
	}
	order.PaymentIntentID = intent.ID

	created, err := u.repos.Orders().Create(ctx, order)
	if err != nil {
		return nil, err
	}

	u.logger.Info("order created",
		slog.String("order", created.Number),
		slog.Int64("customer_id", customerID),
		slog.Int64("celebrity_id", celeb.ID),
		slog.Int64("total_cents", created.TotalCents),
	)

	return &CheckoutResult{Order: created, Celebrity: celeb, ClientSecret: intent.ClientSecret}, nil
}
