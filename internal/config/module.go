package config

import "go.uber.org/fx"

// Module loads configuration once: .env file, then environment, then flags.
var Module = fx.Provide(Load)
