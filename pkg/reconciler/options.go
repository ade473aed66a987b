package reconciler

import (
	"time"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// options configures a reconciler.
type options struct {
	registry    *suppliers.Registry
	codes       []inventory.SupplierCode
	concurrency int
	clock       func() time.Time
	staleAfter  time.Duration
	locationID  string
}

func defaultOptions() *options {
	return &options{
		registry:    suppliers.Default(),
		concurrency: constants.DefaultConcurrency,
		clock:       time.Now,
		staleAfter:  constants.DefaultStaleAfter,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithRegistry sets the supplier registry.
func WithRegistry(registry *suppliers.Registry) Option {
	return func(o *options) error {
		if registry == nil {
			return &errors.ValidationError{
				Field:   "registry",
				Message: "cannot be nil",
			}
		}
		o.registry = registry
		return nil
	}
}

// WithSuppliers limits a run to the given supplier codes. They still run in
// registry order.
func WithSuppliers(codes ...inventory.SupplierCode) Option {
	return func(o *options) error {
		o.codes = codes
		return nil
	}
}

// WithConcurrency sets how many suppliers are loaded and normalized at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.concurrency = n
		return nil
	}
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{
				Field:   "clock",
				Message: "cannot be nil",
			}
		}
		o.clock = clock
		return nil
	}
}

// WithStaleAfter sets the age past which a supplier is reported stale.
// Zero disables staleness warnings.
func WithStaleAfter(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return &errors.ValidationError{
				Field:   "stale_after",
				Value:   d,
				Message: "cannot be negative",
			}
		}
		o.staleAfter = d
		return nil
	}
}

// WithLocationID sets the storefront location used when planning physical counts.
func WithLocationID(id string) Option {
	return func(o *options) error {
		o.locationID = id
		return nil
	}
}
