// Package ledger keeps the last successful update date of each supplier.
package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/table"
)

// Legacy ledger columns.
const (
	ColumnInitial = "Initial"
	ColumnDate    = "Date"
)

// Entry is the last update of one supplier.
type Entry struct {
	Supplier  inventory.SupplierCode `json:"supplier" yaml:"supplier"`
	Date      string                 `json:"date" yaml:"date"`
	UpdatedAt time.Time              `json:"updated_at" yaml:"updated_at"`
}

// Ledger is a concurrency-safe set of entries keyed by supplier code.
type Ledger struct {
	mu      sync.RWMutex
	entries map[inventory.SupplierCode]Entry
}

// New creates a ledger. Later entries for the same supplier win.
func New(entries ...Entry) *Ledger {
	l := &Ledger{entries: make(map[inventory.SupplierCode]Entry, len(entries))}
	for _, e := range entries {
		if e.Date == "" && !e.UpdatedAt.IsZero() {
			e.Date = e.UpdatedAt.Format(constants.LedgerDateLayout)
		}
		l.entries[e.Supplier] = e
	}
	return l
}

// Record upserts the entry for code.
func (l *Ledger) Record(code inventory.SupplierCode, at time.Time) Entry {
	e := Entry{
		Supplier:  code,
		Date:      at.Format(constants.LedgerDateLayout),
		UpdatedAt: at,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[code] = e
	return e
}

// Get returns the entry for code.
func (l *Ledger) Get(code inventory.SupplierCode) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[code]
	return e, ok
}

// Entries returns all entries sorted by supplier code.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Supplier, b.Supplier) })
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Table returns the ledger in its legacy two-column form.
func (l *Ledger) Table() *table.Table {
	out := table.New("update_history", []string{ColumnInitial, ColumnDate})
	for _, e := range l.Entries() {
		out.Append([]string{string(e.Supplier), e.Date})
	}
	return out
}

// FromTable parses a legacy ledger. "DD-Mon" dates resolve to the most
// recent such day not after now. Rows with a blank date are skipped.
func FromTable(raw *table.Table, now time.Time) (*Ledger, error) {
	if missing := raw.Missing(ColumnInitial, ColumnDate); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}
	var entries []Entry
	for i := 0; i < raw.Len(); i++ {
		code := raw.Value(i, ColumnInitial)
		date := raw.Value(i, ColumnDate)
		if code == "" || date == "" {
			continue
		}
		at, err := ResolveDate(date, now)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  "ledger",
				File:    raw.Name(),
				Line:    i + 2,
				Message: err.Error(),
				Err:     err,
			}
		}
		entries = append(entries, Entry{
			Supplier:  inventory.SupplierCode(code),
			Date:      at.Format(constants.LedgerDateLayout),
			UpdatedAt: at,
		})
	}
	return New(entries...), nil
}

var fullLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly, constants.OrderDateLayout}

// ResolveDate parses a ledger date. Year-less "DD-Mon" values take the
// latest year that keeps the date on or before now.
func ResolveDate(s string, now time.Time) (time.Time, error) {
	for _, layout := range fullLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	var parsed time.Time
	var err error
	for _, layout := range []string{constants.LedgerDateLayout, "2-Jan"} {
		if parsed, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	// 29-Feb may need to walk back several years to find a leap year.
	for y := now.Year(); y > now.Year()-8; y-- {
		c := time.Date(y, parsed.Month(), parsed.Day(), 0, 0, 0, 0, now.Location())
		if c.Month() == parsed.Month() && !c.After(now) {
			return c, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q cannot be placed before %s", s, now.Format(time.DateOnly))
}

// Staleness describes a supplier whose feed has not been applied recently.
type Staleness struct {
	Supplier   inventory.SupplierCode `json:"supplier" yaml:"supplier"`
	LastUpdate time.Time              `json:"last_update,omitzero" yaml:"last_update,omitempty"`
	Age        time.Duration          `json:"age" yaml:"age"`
	Never      bool                   `json:"never" yaml:"never"`
}

// Warning converts the finding into a data quality warning.
func (s Staleness) Warning() error {
	if s.Never {
		return errors.NewDataQualityWarning("ledger", string(s.Supplier), 0, "supplier has never been updated")
	}
	return errors.NewDataQualityWarning("ledger", string(s.Supplier), 0,
		fmt.Sprintf("last updated %s (%s ago)", s.LastUpdate.Format(time.DateOnly), s.Age.Round(time.Hour)))
}

// Stale returns the codes whose last update is older than maxAge, or that
// were never recorded, in the order given.
func (l *Ledger) Stale(now time.Time, maxAge time.Duration, codes []inventory.SupplierCode) []Staleness {
	var out []Staleness
	for _, code := range codes {
		e, ok := l.Get(code)
		if !ok || e.UpdatedAt.IsZero() {
			out = append(out, Staleness{Supplier: code, Never: true})
			continue
		}
		if age := now.Sub(e.UpdatedAt); age > maxAge {
			out = append(out, Staleness{Supplier: code, LastUpdate: e.UpdatedAt, Age: age})
		}
	}
	return out
}
