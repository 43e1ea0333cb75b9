package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// WebhookProvider names the payment processor in webhook_events.
const WebhookProvider = "stripe"

var errDuplicateEvent = errors.New("webhook event already processed")

// WebhookUseCase applies processor notifications to orders, tips and payouts.
type WebhookUseCase struct {
	repos     repository.Factory
	tx        repository.Transactor
	processor PaymentProcessor
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(repos repository.Factory, tx repository.Transactor, processor PaymentProcessor, settings Settings, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{repos: repos, tx: tx, processor: processor, settings: settings, logger: logger, now: time.Now}
}

// isDomainFailure reports errors caused by the content of an event rather than
// by infrastructure. Retrying such events would never succeed.
func isDomainFailure(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound) ||
		errors.Is(err, domainErrors.ErrInvalidTransition) ||
		errors.Is(err, domainErrors.ErrInvalidInput) ||
		errors.Is(err, domainErrors.ErrAlreadyExists)
}

// Handle verifies and applies one notification. It returns ErrInvalidSignature
// for unverifiable payloads and nil for duplicates and domain failures, which
// are recorded instead. Other errors roll everything back so the processor retries.
func (u *WebhookUseCase) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := u.processor.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	record := model.WebhookEvent{
		Provider:   WebhookProvider,
		EventID:    event.ID,
		Type:       event.RawType,
		ReceivedAt: u.now(),
	}

	err = u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		if err := repos.WebhookEvents().Record(ctx, record); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				return errDuplicateEvent
			}
			return err
		}
		return u.dispatch(ctx, repos, event)
	})

	switch {
	case err == nil:
		u.logger.Info("webhook processed", slog.String("event_id", event.ID), slog.String("type", event.RawType))
		return nil
	case errors.Is(err, errDuplicateEvent):
		u.logger.Info("duplicate webhook ignored", slog.String("event_id", event.ID), slog.String("type", event.RawType))
		return nil
	case isDomainFailure(err):
		u.logger.Warn("webhook rejected by domain",
			slog.String("event_id", event.ID),
			slog.String("type", event.RawType),
			slog.String("error", err.Error()),
		)
		record.ProcessingError = err.Error()
		if recErr := u.repos.WebhookEvents().RecordFailure(ctx, record); recErr != nil {
			return fmt.Errorf("record webhook failure: %w", recErr)
		}
		return nil
	default:
		u.logger.Error("webhook processing failed",
			slog.String("event_id", event.ID),
			slog.String("type", event.RawType),
			slog.String("error", err.Error()),
		)
		return err
	}
}

func (u *WebhookUseCase) dispatch(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	switch event.Type {
	case model.PaymentEventSucceeded:
		if event.Kind() == model.PaymentKindTip {
			return u.tipSucceeded(ctx, repos, event)
		}
		return u.bookingSucceeded(ctx, repos, event)
	case model.PaymentEventFailed:
		if event.Kind() == model.PaymentKindTip {
			return u.tipFailed(ctx, repos, event)
		}
		return u.bookingFailed(ctx, repos, event)
	case model.PaymentEventTransferChanged:
		return u.transferChanged(ctx, repos, event)
	default:
		u.logger.Debug("webhook type ignored", slog.String("type", event.RawType))
		return nil
	}
}

func (u *WebhookUseCase) lockBookingOrder(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) (*model.Order, error) {
	if number := event.Metadata[model.MetadataOrderNumber]; number != "" {
		return repos.Orders().LockByNumber(ctx, number)
	}
	order, err := repos.Orders().GetByPaymentIntent(ctx, event.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return repos.Orders().LockByID(ctx, order.ID)
}

func (u *WebhookUseCase) bookingSucceeded(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	order, err := u.lockBookingOrder(ctx, repos, event)
	if err != nil {
		return err
	}

	switch order.State {
	case model.OrderStatePendingPayment:
	case model.OrderStateCancelled:
		return u.refundLatePayment(ctx, repos, order, event)
	default:
		u.logger.Info("booking already paid", slog.String("order", order.Number), slog.String("state", string(order.State)))
		return nil
	}

	if err := order.MarkPaid(event.PaymentIntentID); err != nil {
		return err
	}
	if err := repos.Orders().Update(ctx, order); err != nil {
		return err
	}

	celeb, err := repos.Celebrities().GetByID(ctx, order.CelebrityID)
	if err != nil {
		return err
	}
	subject, body := bookingRequestEmail(order, u.settings.Currency)
	if err := notify(ctx, repos, celeb.UserID, subject, body); err != nil {
		return err
	}
	subject, body = paymentReceiptEmail(order, celeb, u.settings.Currency)
	return notify(ctx, repos, order.CustomerID, subject, body)
}

func (u *WebhookUseCase) refundLatePayment(ctx context.Context, repos repository.Factory, order *model.Order, event *model.PaymentEvent) error {
	refund, err := order.RefundLatePayment(event.PaymentIntentID)
	if err != nil {
		return err
	}
	if !refund {
		return nil
	}

	amount := event.AmountCents
	if amount <= 0 {
		amount = order.TotalCents
	}
	msg, err := model.NewOutboxMessage(model.OutboxKindRefund, model.RefundPayload{
		OrderID:         order.ID,
		OrderNumber:     order.Number,
		PaymentIntentID: order.PaymentIntentID,
		AmountCents:     amount,
	})
	if err != nil {
		return err
	}
	if err := repos.Outbox().Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("queue refund: %w", err)
	}

	u.logger.Warn("payment for cancelled order, refund queued",
		slog.String("order", order.Number),
		slog.String("cancel_reason", string(order.CancelReason)),
	)
	return repos.Orders().Update(ctx, order)
}

func (u *WebhookUseCase) bookingFailed(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	order, err := u.lockBookingOrder(ctx, repos, event)
	if err != nil {
		return err
	}
	if order.State != model.OrderStatePendingPayment {
		return domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("payment failure for order %s in state %s", order.Number, order.State))
	}
	if err := order.MarkPaymentFailed(); err != nil {
		return err
	}
	if err := repos.Orders().Update(ctx, order); err != nil {
		return err
	}

	u.logger.Info("booking payment failed", slog.String("order", order.Number), slog.String("reason", event.FailureReason))
	subject, body := paymentFailedEmail(order)
	return notify(ctx, repos, order.CustomerID, subject, body)
}

func tipIDFrom(event *model.PaymentEvent) (int64, error) {
	id, err := strconv.ParseInt(event.Metadata[model.MetadataTipID], 10, 64)
	if err != nil || id <= 0 {
		return 0, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "tip payment without a tip id")
	}
	return id, nil
}

func (u *WebhookUseCase) tipSucceeded(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	tipID, err := tipIDFrom(event)
	if err != nil {
		return err
	}
	tip, err := repos.Tips().GetByID(ctx, tipID)
	if err != nil {
		return err
	}
	moved, err := repos.Tips().UpdatePaymentStatus(ctx, tip.ID, model.PaymentPending, model.PaymentSucceeded)
	if err != nil {
		return err
	}
	if !moved {
		u.logger.Info("tip already settled", slog.Int64("tip_id", tip.ID))
		return nil
	}
	tip.PaymentStatus = model.PaymentSucceeded

	order, err := repos.Orders().LockByID(ctx, tip.OrderID)
	if err != nil {
		return err
	}
	if err := repos.Orders().AddTip(ctx, order.ID, tip.AmountCents); err != nil {
		return err
	}
	order.TipCents += tip.AmountCents

	celeb, err := repos.Celebrities().GetByID(ctx, tip.CelebrityID)
	if err != nil {
		return err
	}
	msg, err := model.NewOutboxMessage(model.OutboxKindTransfer, model.TransferPayload{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		TipID:       tip.ID,
		CelebrityID: celeb.ID,
		Destination: celeb.PayoutAccountID,
		AmountCents: tip.CelebrityCents,
	})
	if err != nil {
		return err
	}
	if err := repos.Outbox().Enqueue(ctx, msg); err != nil {
		return fmt.Errorf("queue tip transfer: %w", err)
	}

	subject, body := tipReceivedEmail(order, tip, u.settings.Currency)
	return notify(ctx, repos, celeb.UserID, subject, body)
}

func (u *WebhookUseCase) tipFailed(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	tipID, err := tipIDFrom(event)
	if err != nil {
		return err
	}
	moved, err := repos.Tips().UpdatePaymentStatus(ctx, tipID, model.PaymentPending, model.PaymentFailed)
	if err != nil {
		return err
	}
	if moved {
		u.logger.Info("tip payment failed", slog.Int64("tip_id", tipID), slog.String("reason", event.FailureReason))
	}
	return nil
}

func (u *WebhookUseCase) transferChanged(ctx context.Context, repos repository.Factory, event *model.PaymentEvent) error {
	payout, applied, err := repos.Payouts().UpdateTransferStatus(ctx, event.TransferID, event.TransferStatus, event.FailureReason)
	if err != nil {
		return err
	}
	if !applied {
		u.logger.Info("stale transfer event ignored",
			slog.String("transfer_id", event.TransferID),
			slog.String("event_status", string(event.TransferStatus)),
			slog.String("current_status", string(payout.Status)),
		)
		return nil
	}
	if event.TransferStatus == model.TransferFailed {
		u.logger.Error("transfer failed",
			slog.String("transfer_id", event.TransferID),
			slog.Int64("payout_id", payout.ID),
			slog.String("reason", event.FailureReason),
		)
	}
	if payout.TipID != nil {
		return nil
	}

	order, err := repos.Orders().LockByID(ctx, payout.OrderID)
	if err != nil {
		return err
	}
	order.TransferStatus = event.TransferStatus
	return repos.Orders().Update(ctx, order)
}
