package storesync

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
)

type options struct {
	locationID     string
	batchSize      int
	clock          func() time.Time
	idempotencyKey func() string
}

func defaultOptions() *options {
	return &options{
		batchSize:      constants.MaxPhysicalCountBatch,
		clock:          time.Now,
		idempotencyKey: uuid.NewString,
	}
}

// Option configures Plan.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithLocationID sets the storefront location receiving the counts.
func WithLocationID(id string) Option {
	return func(o *options) error {
		o.locationID = id
		return nil
	}
}

// WithBatchSize caps changes per batch. The storefront accepts at most 100.
func WithBatchSize(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxPhysicalCountBatch {
			return &errors.ValidationError{
				Field:   "batch_size",
				Value:   n,
				Message: "must be between 1 and 100",
			}
		}
		o.batchSize = n
		return nil
	}
}

// WithClock sets the time source for occurred_at.
func WithClock(clock func() time.Time) Option {
	return func(o *options) error {
		if clock == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.clock = clock
		return nil
	}
}

// WithIdempotencyKeys sets the generator of per-batch idempotency keys.
func WithIdempotencyKeys(gen func() string) Option {
	return func(o *options) error {
		if gen == nil {
			return &errors.ValidationError{Field: "idempotency_keys", Message: "cannot be nil"}
		}
		o.idempotencyKey = gen
		return nil
	}
}
