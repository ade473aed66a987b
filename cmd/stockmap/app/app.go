// Package app provides the application context and dependency management
// for the stockmap CLI: configuration, logging, the supplier registry and
// the lazily opened state store.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// App represents the stockmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily initialized, guarded by mu
	mu       sync.RWMutex
	registry *suppliers.Registry
	store    *store.Store
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the default sources that
// can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// Settings returns the resolved run settings.
func (a *App) Settings() application.Settings {
	return a.config.Settings()
}

// Registry returns the supplier registry, loading it on first use.
func (a *App) Registry() (*suppliers.Registry, error) {
	a.mu.RLock()
	if a.registry != nil {
		reg := a.registry
		a.mu.RUnlock()
		return reg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.registry != nil {
		return a.registry, nil
	}
	if a.config.RegistryFile == "" {
		a.registry = suppliers.Default()
		return a.registry, nil
	}
	reg, err := suppliers.LoadFile(a.config.RegistryFile)
	if err != nil {
		return nil, errors.WrapResource("load", "registry", a.config.RegistryFile, err)
	}
	a.registry = reg
	return reg, nil
}

// Store returns the state store, opening it on first use.
func (a *App) Store() (*store.Store, error) {
	a.mu.RLock()
	if a.store != nil {
		st := a.store
		a.mu.RUnlock()
		return st, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	st, err := store.Open(a.config.DBPath)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

// Shutdown performs graceful shutdown of the application, closing the
// store if it was opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	st := a.store
	a.store = nil
	a.mu.Unlock()

	if st == nil {
		return nil
	}
	if err := st.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close store during shutdown")
		return err
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry sets the supplier registry (useful for testing).
func WithRegistry(reg *suppliers.Registry) Option {
	return func(a *App) error {
		a.registry = reg
		return nil
	}
}

// WithStore sets an already opened store (useful for testing).
func WithStore(st *store.Store) Option {
	return func(a *App) error {
		a.store = st
		return nil
	}
}
