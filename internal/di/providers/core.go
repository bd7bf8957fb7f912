// Package providers holds samber/do/v2 provider functions: one function per
// component, each resolving its own dependencies via do.MustInvoke rather
// than a hand-written wiring graph. internal/di/container.go registers them.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/logger"
)

// ProvideConfig loads configuration once per process.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger builds the structured logger from config.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.Logger.Level))
	return logger.New(logger.Config{
		Writer:      os.Stdout,
		Environment: cfg.App.Environment,
		Level:       level,
	}), nil
}
