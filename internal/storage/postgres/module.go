package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Factory { return s },
		func(s *Storage) repository.Transactor { return s },
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.CelebrityRepository { return s.Celebrities() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.TipRepository { return s.Tips() },
		func(s *Storage) repository.PayoutRepository { return s.Payouts() },
		func(s *Storage) repository.ReviewRepository { return s.Reviews() },
		func(s *Storage) repository.OutboxRepository { return s.Outbox() },
		func(s *Storage) repository.WebhookEventRepository { return s.WebhookEvents() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
