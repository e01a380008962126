// Package cli provides the initialization shared by the command-line
// entry points: environment, logging, configuration and store wiring.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"calcula/internal/backend"
	"calcula/internal/cache"
	"calcula/internal/config"
	"calcula/internal/log"
	"calcula/internal/services"
)

// SetupLogger initializes structured logging at the given level and makes
// it the process default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Writer:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// App bundles the wired components of one run.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Session *cache.Session
	State   *services.StateController
	Chat    *services.ChatService

	cleanups []backend.CleanupFunc
}

// Init opens the configured store, runs the startup cleanup and loads
// the state.
func Init(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	ctx = log.WithContext(ctx, logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	session := cache.NewSession(cfg.SessionCacheSize, cfg.SessionCacheTTL)
	state := services.NewStateController(res.Store, services.Options{
		Logger:  logger,
		Session: session,
	})

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Session:  session,
		State:    state,
		Chat:     services.NewChatService(state, session),
		cleanups: []backend.CleanupFunc{res.Cleanup},
	}

	if err := state.Bootstrap(ctx); err != nil {
		if cerr := app.Close(); cerr != nil {
			logger.Error("Cleanup after failed start", log.FieldError, cerr)
		}
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return app, nil
}

// Close releases every resource opened by Init.
func (a *App) Close() error {
	var result *multierror.Error
	for _, fn := range a.cleanups {
		if fn == nil {
			continue
		}
		result = multierror.Append(result, fn())
	}
	return result.ErrorOrNil()
}
