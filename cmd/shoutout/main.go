package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var cfg *config.Config
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
		fx.Populate(&cfg),
	)
	if err := app.Err(); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "build application: %v\n", err)
		os.Exit(1)
	}

	err := run(ctx, app, cfg.ShutdownTimeout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
