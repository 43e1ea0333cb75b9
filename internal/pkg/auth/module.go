package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
)

// Module provides password hashing and token issuing.
var Module = fx.Provide(
	newPasswordHasher,
	newTokenStrategy,
)

type moduleParams struct {
	fx.In

	Config *config.Config
}

func newPasswordHasher(p moduleParams) PasswordHasher {
	return NewBcryptHasher(p.Config.BcryptCost)
}

func newTokenStrategy(p moduleParams) Strategy {
	return NewJWTStrategy(p.Config.JWTSecret, Options{TTL: p.Config.TokenTTL})
}
