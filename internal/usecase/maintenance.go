package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const expireBatchSize = 100

// MaintenanceUseCase runs periodic cleanups.
type MaintenanceUseCase struct {
	repos    repository.Factory
	tx       repository.Transactor
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewMaintenanceUseCase constructs MaintenanceUseCase.
func NewMaintenanceUseCase(repos repository.Factory, tx repository.Transactor, settings Settings, logger *slog.Logger) *MaintenanceUseCase {
	return &MaintenanceUseCase{repos: repos, tx: tx, settings: settings, logger: logger, now: time.Now}
}

// ExpireAbandoned cancels orders left unpaid longer than the payment TTL.
func (u *MaintenanceUseCase) ExpireAbandoned(ctx context.Context) (int, error) {
	orders, err := u.repos.Orders().ListUnpaidBefore(ctx, u.now().Add(-u.settings.OrderPaymentTTL), expireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, o := range orders {
		err := u.tx.InTransaction(ctx, func(repos repository.Factory) error {
			order, err := repos.Orders().LockByID(ctx, o.ID)
			if err != nil {
				return err
			}
			if err := order.Expire(); err != nil {
				return err
			}
			return repos.Orders().Update(ctx, order)
		})
		switch {
		case err == nil:
			expired++
			u.logger.Info("unpaid order expired", slog.String("order", o.Number))
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			// paid in the meantime
		default:
			return expired, fmt.Errorf("expire order %s: %w", o.Number, err)
		}
	}
	return expired, nil
}

// Purge deletes processed outbox messages and webhook records past retention.
func (u *MaintenanceUseCase) Purge(ctx context.Context) (int64, int64, error) {
	before := u.now().Add(-u.settings.RetentionPeriod)

	messages, err := u.repos.Outbox().PurgeProcessed(ctx, before)
	if err != nil {
		return 0, 0, fmt.Errorf("purge outbox: %w", err)
	}
	events, err := u.repos.WebhookEvents().Purge(ctx, before)
	if err != nil {
		return messages, 0, fmt.Errorf("purge webhook events: %w", err)
	}

	if messages > 0 || events > 0 {
		u.logger.Info("retention purge",
			slog.Int64("outbox_messages", messages),
			slog.Int64("webhook_events", events),
		)
	}
	return messages, events, nil
}

