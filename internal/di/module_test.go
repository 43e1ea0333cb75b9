package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/shoutout/internal/adapter/idempotency"
	"github.com/polkiloo/shoutout/internal/app"
	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/domain/repository"
	"github.com/polkiloo/shoutout/internal/storage/postgres"
	"github.com/polkiloo/shoutout/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	mr := miniredis.RunT(t)
	redisStore, err := idempotency.NewRedisStore("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}

	cfg := &config.Config{
		RunAddress:         "127.0.0.1:0",
		DatabaseURI:        "postgres://stub",
		RedisURL:           "redis://" + mr.Addr() + "/0",
		JWTSecret:          "secret",
		TokenTTL:           time.Hour,
		NodeID:             1,
		StripeSecretKey:    "sk_test_123",
		Currency:           "usd",
		StorageDriver:      config.StorageDriverLocal,
		StorageDir:         t.TempDir(),
		OutboxPollInterval: time.Hour,
		OutboxBatchSize:    1,
		OutboxMaxAttempts:  1,
		WorkerPoolSize:     1,
		SweepInterval:      time.Hour,
		IdempotencyTTL:     time.Minute,
		ShutdownTimeout:    time.Second,
	}
	store := test.NewMemoryStore()

	var (
		facade *app.MarketplaceFacade
		server *http.Server
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(slog.New(slog.NewJSONHandler(io.Discard, nil))),
			fx.Replace(zap.NewNop()),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(redisStore),
			fx.Replace(fx.Annotate(store, fx.As(new(repository.Factory)))),
			fx.Replace(fx.Annotate(store, fx.As(new(repository.Transactor)))),
			fx.Replace(fx.Annotate(store.Users(), fx.As(new(repository.UserRepository)))),
		),
		fx.Populate(&facade, &server),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil || server == nil {
		t.Fatal("expected marketplace facade and http server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })

	report, _ := facade.Health(ctx)
	if report["redis"] != "ok" {
		t.Fatalf("expected redis to be healthy, got %v", report)
	}
}
