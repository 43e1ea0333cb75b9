package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// BookingAction is the celebrity's answer to a booking request.
type BookingAction string

const (
	BookingAccept  BookingAction = "accept"
	BookingDecline BookingAction = "decline"
)

// BookingUseCase lets celebrities accept or decline paid bookings.
type BookingUseCase struct {
	repos    repository.Factory
	tx       repository.Transactor
	settings Settings
	logger   *slog.Logger
}

// NewBookingUseCase constructs BookingUseCase.
func NewBookingUseCase(repos repository.Factory, tx repository.Transactor, settings Settings, logger *slog.Logger) *BookingUseCase {
	return &BookingUseCase{repos: repos, tx: tx, settings: settings, logger: logger}
}

// Decide applies action to the booking request orderID owned by the celebrity account celebUserID.
// Declining a paid order queues exactly one refund in the same transaction.
func (u *BookingUseCase) Decide(ctx context.Context, celebUserID, orderID int64, action BookingAction) (*model.Order, error) {
	if action != BookingAccept && action != BookingDecline {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidAction, "action must be accept or decline")
	}

	celeb, err := u.repos.Celebrities().GetByUserID(ctx, celebUserID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the booked celebrity can answer this request")
	}
	if err != nil {
		return nil, err
	}

	var (
		result *model.Order
		refund bool
	)
	err = u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		order, err := repos.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.CelebrityID != celeb.ID {
			return domainErrors.WithMessage(domainErrors.ErrForbidden, "only the booked celebrity can answer this request")
		}

		var subject, body string
		switch action {
		case BookingAccept:
			if err := order.Accept(); err != nil {
				return err
			}
			subject, body = bookingAcceptedEmail(order, celeb)
		case BookingDecline:
			refund, err = order.DeclineByCelebrity()
			if err != nil {
				return err
			}
			if refund {
				msg, err := model.NewOutboxMessage(model.OutboxKindRefund, model.RefundPayload{
					OrderID:         order.ID,
					OrderNumber:     order.Number,
					PaymentIntentID: order.PaymentIntentID,
					AmountCents:     order.TotalCents,
				})
				if err != nil {
					return err
				}
				if err := repos.Outbox().Enqueue(ctx, msg); err != nil {
					return fmt.Errorf("queue refund: %w", err)
				}
			}
			subject, body = bookingDeclinedEmail(order, celeb, refund, u.settings.Currency)
		}

		if err := repos.Orders().Update(ctx, order); err != nil {
			return err
		}
		if err := notify(ctx, repos, order.CustomerID, subject, body); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("booking request answered",
		slog.String("order", result.Number),
		slog.String("action", string(action)),
		slog.String("state", string(result.State)),
		slog.Bool("refund_requested", refund),
	)
	return result, nil
}
