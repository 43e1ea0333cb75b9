package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

const defaultRetryAfter = 30 * time.Second

const opCreateTransfer = "create transfer"

// RateLimitedError represents rate limiting signal from the payment processor.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("payment processor rate limited, retry after %s", e.RetryAfter)
}

func (e RateLimitedError) Unwrap() error {
	return domainErrors.ErrPaymentProvider
}

// Gateway talks to Stripe on behalf of the marketplace platform account.
type Gateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewGateway creates a Stripe gateway. A nil backends value uses the public Stripe API.
func NewGateway(secretKey, webhookSecret string, backends *stripe.Backends, logger *slog.Logger) *Gateway {
	return &Gateway{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreatePaymentIntent opens a charge the client confirms with the returned secret.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req model.PaymentRequest) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.mapError("create payment intent", err)
	}
	return &model.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

// Refund returns the full amount of a payment intent.
func (g *Gateway) Refund(ctx context.Context, req model.RefundRequest) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(req.PaymentIntentID)}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	if _, err := g.api.Refunds.New(params); err != nil {
		return g.mapError("refund", err)
	}
	return nil
}

// CreateTransfer moves money from the platform balance to a connected account.
func (g *Gateway) CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.Destination),
	}
	if req.TransferGroup != "" {
		params.TransferGroup = stripe.String(req.TransferGroup)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return nil, g.mapError(opCreateTransfer, err)
	}

	status := model.TransferPending
	if tr.Reversed {
		status = model.TransferFailed
	}
	return &model.TransferResult{ID: tr.ID, Status: status}, nil
}

// AvailableBalance returns the platform balance available for transfers in currency.
func (g *Gateway) AvailableBalance(ctx context.Context, currency string) (int64, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	balance, err := g.api.Balance.Get(params)
	if err != nil {
		return 0, g.mapError("fetch balance", err)
	}

	var total int64
	for _, amount := range balance.Available {
		if strings.EqualFold(string(amount.Currency), currency) {
			total += amount.Amount
		}
	}
	return total, nil
}

func (g *Gateway) mapError(op string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%s: %w: %v", op, domainErrors.ErrPaymentProvider, err)
	}

	g.logger.Warn("payment processor error",
		slog.String("op", op),
		slog.String("code", string(stripeErr.Code)),
		slog.Int("status", stripeErr.HTTPStatusCode),
		slog.String("request_id", stripeErr.RequestID),
	)

	switch code := string(stripeErr.Code); {
	case code == "balance_insufficient":
		return domainErrors.WithMessage(domainErrors.ErrInsufficientPlatformBalance,
			"the platform balance is too low to pay the celebrity right now, please try again later")
	case code == "account_invalid" || code == "no_account" || (code == "resource_missing" && op == opCreateTransfer):
		return domainErrors.WithMessage(domainErrors.ErrInvalidPayoutAccount,
			"the celebrity payout account is invalid")
	case code == "transfers_not_allowed" || strings.Contains(strings.ToLower(stripeErr.Msg), "capabilities"):
		return domainErrors.WithMessage(domainErrors.ErrTransfersNotPermitted,
			"the celebrity payout account cannot receive transfers yet")
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		var header string
		if stripeErr.LastResponse != nil {
			header = stripeErr.LastResponse.Header.Get("Retry-After")
		}
		return RateLimitedError{RetryAfter: parseRetryAfter(header, time.Now())}
	default:
		return fmt.Errorf("%s: %w: %s", op, domainErrors.ErrPaymentProvider, stripeErr.Msg)
	}
}

// parseRetryAfter accepts delay seconds or an HTTP date.
func parseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
