package floor

import (
	"strings"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/quantity"
)

type options struct {
	display       func(string) (int, bool)
	reorderColumn string
}

func defaultOptions() *options {
	return &options{
		display:       quantity.Display,
		reorderColumn: ColumnReorderNumber,
	}
}

// Option configures Reconcile.
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

// WithDisplayParser replaces the display code parser.
func WithDisplayParser(parse func(string) (int, bool)) Option {
	return func(o *options) error {
		if parse == nil {
			return &errors.ValidationError{
				Field:   "display_parser",
				Message: "cannot be nil",
			}
		}
		o.display = parse
		return nil
	}
}

// WithReorderColumn sets the column that groups items for reordering.
func WithReorderColumn(col string) Option {
	return func(o *options) error {
		if strings.TrimSpace(col) == "" {
			return &errors.ValidationError{
				Field:   "reorder_column",
				Message: "cannot be empty",
			}
		}
		o.reorderColumn = col
		return nil
	}
}
