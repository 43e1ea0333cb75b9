package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/adapter/idempotency"
	"github.com/polkiloo/shoutout/internal/adapter/mailer"
	"github.com/polkiloo/shoutout/internal/adapter/objectstore"
	"github.com/polkiloo/shoutout/internal/adapter/payment"
	"github.com/polkiloo/shoutout/internal/app"
	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/logger"
	"github.com/polkiloo/shoutout/internal/pkg/auth"
	"github.com/polkiloo/shoutout/internal/pkg/idgen"
	"github.com/polkiloo/shoutout/internal/server/http/handlers"
	"github.com/polkiloo/shoutout/internal/server/http/middleware"
	"github.com/polkiloo/shoutout/internal/server/http/router"
	"github.com/polkiloo/shoutout/internal/storage/postgres"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// Module assembles the whole service. Extra options are applied last, so tests
// can swap adapters with fx.Replace.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		mailer.Module,
		objectstore.Module,
		idempotency.Module,
		idgen.Module,
		usecase.Module,
		fx.Provide(
			func(g *payment.Gateway) usecase.PaymentProcessor { return g },
			func(s mailer.Sender) usecase.Mailer { return s },
			func(s objectstore.Store) usecase.ObjectStore { return s },
			func(g *idgen.Snowflake) usecase.OrderNumberGenerator { return g },
			func(s *postgres.Storage) app.DatabasePinger { return s },
			func(s *idempotency.RedisStore) app.CachePinger { return s },
			func(s *idempotency.RedisStore) middleware.IdempotencyStore { return s },
			func(f *app.MarketplaceFacade) handlers.MarketplaceFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
