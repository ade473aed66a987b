package sales

import (
	"strings"
	"time"

	"github.com/agentstation/stockmap/pkg/errors"
)

type options struct {
	from, to    time.Time
	departments map[string]bool
}

// Option configures Report.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithDateRange keeps sales dated from the start of from through the end of
// to. A zero bound is open.
func WithDateRange(from, to time.Time) Option {
	return func(o *options) error {
		if !from.IsZero() && !to.IsZero() && to.Before(from) {
			return &errors.ValidationError{
				Field:   "date_range",
				Value:   [2]time.Time{from, to},
				Message: "end date is before start date",
			}
		}
		o.from, o.to = day(from), day(to)
		return nil
	}
}

// WithDepartments keeps only sales from the named departments. Matching
// ignores case.
func WithDepartments(names ...string) Option {
	return func(o *options) error {
		if len(names) == 0 {
			return nil
		}
		o.departments = make(map[string]bool, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				o.departments[strings.ToLower(n)] = true
			}
		}
		return nil
	}
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (o *options) keepDate(d time.Time) bool {
	if !o.from.IsZero() && d.Before(o.from) {
		return false
	}
	if !o.to.IsZero() && d.After(o.to) {
		return false
	}
	return true
}

func (o *options) keepDepartment(name string) bool {
	return o.departments == nil || o.departments[strings.ToLower(strings.TrimSpace(name))]
}
