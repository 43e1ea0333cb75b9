package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const maxTipMessageLength = 500

// TipResult is a pending tip with the secret the client confirms payment with.
type TipResult struct {
	Tip          *model.Tip
	ClientSecret string
}

// TipUseCase adds gratuities to approved orders.
type TipUseCase struct {
	repos     repository.Factory
	processor PaymentProcessor
	settings  Settings
	logger    *slog.Logger
}

// NewTipUseCase constructs TipUseCase.
func NewTipUseCase(repos repository.Factory, processor PaymentProcessor, settings Settings, logger *slog.Logger) *TipUseCase {
	return &TipUseCase{repos: repos, processor: processor, settings: settings, logger: logger}
}

// tipCents validates a tip given in major units and converts it to cents.
func tipCents(amount decimal.Decimal) (int64, error) {
	if !model.HasCentPrecision(amount) {
		return 0, domainErrors.WithMessage(domainErrors.ErrInvalidAmount, "tip amount can have at most two decimal places")
	}
	cents := model.CentsFromDecimal(amount)
	if cents < model.MinTipCents || cents > model.MaxTipCents {
		return 0, domainErrors.WithMessage(domainErrors.ErrInvalidAmount, "tip amount must be between 1 and 1000")
	}
	return cents, nil
}

// Create records a pending tip and opens the charge for it. The amount is
// validated before anything is read or written.
func (u *TipUseCase) Create(ctx context.Context, customerID int64, number string, amount decimal.Decimal, message string) (*TipResult, error) {
	cents, err := tipCents(amount)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if len(message) > maxTipMessageLength {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "tip message is too long")
	}

	order, err := u.repos.Orders().GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the customer who placed the order can tip")
	}
	if err := order.CheckTippable(); err != nil {
		return nil, err
	}

	tip, err := u.repos.Tips().Create(ctx, model.NewTip(*order, customerID, cents, message))
	if err != nil {
		return nil, err
	}

	intent, err := u.processor.CreatePaymentIntent(ctx, model.PaymentRequest{
		AmountCents: cents,
		Currency:    u.settings.Currency,
		Description: fmt.Sprintf("Tip for order %s", order.Number),
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindTip,
			model.MetadataTipID:       strconv.FormatInt(tip.ID, 10),
			model.MetadataOrderNumber: order.Number,
		},
		IdempotencyKey: "tip-" + strconv.FormatInt(tip.ID, 10),
	})
	if err != nil {
		if _, markErr := u.repos.Tips().UpdatePaymentStatus(ctx, tip.ID, model.PaymentPending, model.PaymentFailed); markErr != nil {
			u.logger.Error("mark tip failed", slog.Int64("tip_id", tip.ID), slog.String("error", markErr.Error()))
		}
		return nil, err
	}

	if err := u.repos.Tips().SetPaymentIntent(ctx, tip.ID, intent.ID); err != nil {
		return nil, err
	}
	tip.PaymentIntentID = intent.ID

	u.logger.Info("tip created",
		slog.String("order", order.Number),
		slog.Int64("tip_id", tip.ID),
		slog.Int64("amount_cents", cents),
	)
	return &TipResult{Tip: tip, ClientSecret: intent.ClientSecret}, nil
}
