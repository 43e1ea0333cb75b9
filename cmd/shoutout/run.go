package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

// run starts app and stops it once ctx is cancelled or a component asks for
// shutdown. Stop hooks get at most stopTimeout.
func run(ctx context.Context, app *fx.App, stopTimeout time.Duration) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	var exitCode int
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("application shut down with exit code %d", exitCode)
	}
	return nil
}
