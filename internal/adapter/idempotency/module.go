package idempotency

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
)

// Module provides the Redis-backed idempotency store.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Config *config.Config
}

func newStore(p storeParams) (*RedisStore, error) {
	return NewRedisStore(p.Config.RedisURL)
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Store     *RedisStore
	Logger    *slog.Logger
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Store.HealthCheck(ctx); err != nil {
				p.Logger.Warn("redis is not reachable yet", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return p.Store.Close()
		},
	})
}
