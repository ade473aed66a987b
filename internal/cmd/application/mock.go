package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	SettingsFunc     func() Settings
	RegistryFunc     func() (*suppliers.Registry, error)
	StoreFunc        func() (*store.Store, error)
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Settings returns settings using the mock function or zero settings.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{Concurrency: 1}
}

// Registry returns the registry using the mock function or the embedded one.
func (m *Mock) Registry() (*suppliers.Registry, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc()
	}
	return suppliers.Default(), nil
}

// Store returns a store using the mock function or an error.
func (m *Mock) Store() (*store.Store, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc()
	}
	return nil, errors.NewConfigError("store", "no store configured", nil)
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
