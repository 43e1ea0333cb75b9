package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewMarketplaceFacade,
		newHTTPServer,
		newOutboxRelay,
		newScheduler,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *MarketplaceFacade
	Config *config.Config
	Logger *slog.Logger
}

func newOutboxRelay(p workerParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(
		p.Facade,
		p.Config.OutboxPollInterval,
		p.Config.OutboxBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger.With(slog.String("component", "outbox")),
	)
}

func newScheduler(p workerParams) (*worker.Scheduler, error) {
	return worker.NewScheduler(p.Facade, p.Config.SweepInterval, p.Logger.With(slog.String("component", "scheduler")))
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.OutboxRelay
	Scheduler  *worker.Scheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	// background work outlives the start hook context
	runCtx, cancelRun := context.WithCancel(context.Background())

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting shoutout", slog.String("addr", p.Server.Addr))
			if err := p.Scheduler.Start(runCtx); err != nil {
				return err
			}
			p.Relay.Start(runCtx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			serverErr := p.Server.Shutdown(shutdownCtx)

			cancelRun()
			p.Relay.Stop()
			if err := p.Scheduler.Stop(); err != nil {
				p.Logger.Warn("scheduler shutdown", slog.String("error", err.Error()))
			}

			if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
				return serverErr
			}
			p.Logger.Info("shoutout stopped")
			return nil
		},
	})
}
