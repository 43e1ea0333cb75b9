package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
)

// Module exposes the Stripe gateway to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) *Gateway {
	return NewGateway(p.Config.StripeSecretKey, p.Config.StripeWebhookSecret, nil, p.Logger)
}
