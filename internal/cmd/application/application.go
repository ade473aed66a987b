// Package application provides the application interface for stockmap
// commands.
//
// Commands accept Application rather than the concrete App type so they can
// be tested against Mock:
//
//	mock := &application.Mock{
//	    StoreFunc: func() (*store.Store, error) {
//	        return store.Open(filepath.Join(t.TempDir(), "test.db"))
//	    },
//	}
//	cmd := backorders.NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// Settings are the resolved run settings commands read.
type Settings struct {
	DataDir      string        `json:"data_dir" yaml:"data_dir"`
	OutputDir    string        `json:"output_dir" yaml:"output_dir"`
	DBPath       string        `json:"db_path" yaml:"db_path"`
	RegistryFile string        `json:"registry_file,omitempty" yaml:"registry_file,omitempty"`
	POSFile      string        `json:"pos_file,omitempty" yaml:"pos_file,omitempty"`
	ListingsFile string        `json:"listings_file,omitempty" yaml:"listings_file,omitempty"`
	OrdersFile   string        `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	Concurrency  int           `json:"concurrency" yaml:"concurrency"`
	StaleAfter   time.Duration `json:"stale_after" yaml:"stale_after"`
	Schedule     string        `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	MetricsFile  string        `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	LocationID   string        `json:"location_id,omitempty" yaml:"location_id,omitempty"`
	Quiet        bool          `json:"-" yaml:"-"`
	NoColor      bool          `json:"-" yaml:"-"`
}

// Application provides the dependencies commands need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Settings returns the resolved configuration.
	Settings() Settings

	// Registry returns the supplier registry, from registry_file when set
	// and the embedded one otherwise.
	Registry() (*suppliers.Registry, error)

	// Store returns the state database, opening it lazily.
	Store() (*store.Store, error)

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
