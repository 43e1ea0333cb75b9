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

// OutboxUseCase delivers side effects queued by other use cases.
type OutboxUseCase struct {
	repos     repository.Factory
	tx        repository.Transactor
	processor PaymentProcessor
	mailer    Mailer
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
}

// NewOutboxUseCase constructs OutboxUseCase.
func NewOutboxUseCase(repos repository.Factory, tx repository.Transactor, processor PaymentProcessor, mailer Mailer, settings Settings, logger *slog.Logger) *OutboxUseCase {
	return &OutboxUseCase{
		repos:     repos,
		tx:        tx,
		processor: processor,
		mailer:    mailer,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// Claim leases up to limit due messages.
func (u *OutboxUseCase) Claim(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	return u.repos.Outbox().ClaimBatch(ctx, limit, u.settings.OutboxLease)
}

// Complete marks msg delivered.
func (u *OutboxUseCase) Complete(ctx context.Context, msg model.OutboxMessage) error {
	return u.repos.Outbox().MarkProcessed(ctx, msg.ID)
}

// Fail records a failed attempt and schedules the next one after retryIn.
// Once attempts are exhausted the message is dead; a dead refund marks the
// order refund as FAILED.
func (u *OutboxUseCase) Fail(ctx context.Context, msg model.OutboxMessage, cause error, retryIn time.Duration) error {
	attempts := msg.Attempts + 1
	dead := u.settings.OutboxMaxAttempts > 0 && attempts >= u.settings.OutboxMaxAttempts

	if err := u.repos.Outbox().MarkFailed(ctx, msg.ID, attempts, u.now().Add(retryIn), cause.Error(), dead); err != nil {
		return err
	}
	if !dead {
		u.logger.Warn("outbox delivery failed",
			slog.String("id", msg.ID.String()),
			slog.String("kind", string(msg.Kind)),
			slog.Int("attempts", attempts),
			slog.Duration("retry_in", retryIn),
			slog.String("error", cause.Error()),
		)
		return nil
	}

	u.logger.Error("outbox message dead",
		slog.String("id", msg.ID.String()),
		slog.String("kind", string(msg.Kind)),
		slog.Int("attempts", attempts),
		slog.String("error", cause.Error()),
	)
	if msg.Kind != model.OutboxKindRefund {
		return nil
	}

	var payload model.RefundPayload
	if err := msg.Decode(&payload); err != nil {
		return err
	}
	return u.setRefundStatus(ctx, payload.OrderID, model.RefundFailed)
}

// Deliver performs the side effect described by msg.
func (u *OutboxUseCase) Deliver(ctx context.Context, msg model.OutboxMessage) error {
	switch msg.Kind {
	case model.OutboxKindEmail:
		var email model.Email
		if err := msg.Decode(&email); err != nil {
			return err
		}
		return u.mailer.Send(ctx, email)
	case model.OutboxKindRefund:
		var payload model.RefundPayload
		if err := msg.Decode(&payload); err != nil {
			return err
		}
		return u.refund(ctx, payload)
	case model.OutboxKindTransfer:
		var payload model.TransferPayload
		if err := msg.Decode(&payload); err != nil {
			return err
		}
		return u.transfer(ctx, payload)
	default:
		return fmt.Errorf("unknown outbox kind %q", msg.Kind)
	}
}

func (u *OutboxUseCase) refund(ctx context.Context, payload model.RefundPayload) error {
	if err := u.processor.Refund(ctx, model.RefundRequest{
		PaymentIntentID: payload.PaymentIntentID,
		IdempotencyKey:  "refund-" + payload.OrderNumber,
	}); err != nil {
		return err
	}
	if err := u.setRefundStatus(ctx, payload.OrderID, model.RefundSucceeded); err != nil {
		return err
	}
	u.logger.Info("refund issued",
		slog.String("order", payload.OrderNumber),
		slog.Int64("amount_cents", payload.AmountCents),
	)
	return nil
}

func (u *OutboxUseCase) setRefundStatus(ctx context.Context, orderID int64, status model.RefundStatus) error {
	return u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		order, err := repos.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.RefundStatus = status
		return repos.Orders().Update(ctx, order)
	})
}

func (u *OutboxUseCase) transfer(ctx context.Context, payload model.TransferPayload) error {
	destination := payload.Destination
	if destination == "" {
		celeb, err := u.repos.Celebrities().GetByID(ctx, payload.CelebrityID)
		if err != nil {
			return err
		}
		if !celeb.CanReceivePayouts() {
			return domainErrors.WithMessage(domainErrors.ErrPayoutAccountMissing, "celebrity has no payout account")
		}
		destination = celeb.PayoutAccountID
	}

	tipID := strconv.FormatInt(payload.TipID, 10)
	res, err := u.processor.CreateTransfer(ctx, model.TransferRequest{
		AmountCents:   payload.AmountCents,
		Currency:      u.settings.Currency,
		Destination:   destination,
		TransferGroup: payload.OrderNumber,
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindTip,
			model.MetadataOrderNumber: payload.OrderNumber,
			model.MetadataTipID:       tipID,
		},
		IdempotencyKey: "tip-transfer-" + tipID,
	})
	if err != nil {
		res, err = sandboxTransfer(u.settings.Sandbox, "tip_"+tipID, err)
		if err != nil {
			return err
		}
	}

	err = u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		_, _, err := repos.Payouts().Create(ctx,
			model.Payout{
				OrderID:     payload.OrderID,
				TipID:       &payload.TipID,
				CelebrityID: payload.CelebrityID,
				AmountCents: payload.AmountCents,
				Status:      res.Status,
				Simulated:   res.Simulated,
			},
			model.Transfer{
				ExternalID:  res.ID,
				Destination: destination,
				AmountCents: payload.AmountCents,
				Status:      res.Status,
				Simulated:   res.Simulated,
			})
		return err
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		u.logger.Info("tip payout already recorded", slog.Int64("tip_id", payload.TipID), slog.String("transfer_id", res.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("record tip payout: %w", err)
	}

	u.logger.Info("tip transferred",
		slog.String("order", payload.OrderNumber),
		slog.Int64("tip_id", payload.TipID),
		slog.String("transfer_id", res.ID),
		slog.Bool("simulated", res.Simulated),
	)
	return nil
}
