package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Module wires zap, its slog front end, and fx event logging.
var Module = fx.Options(
	fx.Provide(New, NewSlog),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
	fx.Invoke(registerSync),
)

func registerSync(lc fx.Lifecycle, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stdout sync fails on some terminals
			_ = logger.Sync()
			return nil
		},
	})
}
