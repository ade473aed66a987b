package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/ledger"
	"github.com/agentstation/stockmap/pkg/marketplace"
	"github.com/agentstation/stockmap/pkg/storesync"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// Status is the outcome of one supplier in a run.
type Status string

// Supplier statuses.
const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SupplierOutcome reports what happened to one supplier.
type SupplierOutcome struct {
	Code      inventory.SupplierCode `json:"code" yaml:"code"`
	Name      string                 `json:"name" yaml:"name"`
	Status    Status                 `json:"status" yaml:"status"`
	Rows      int                    `json:"rows" yaml:"rows"`
	Files     []string               `json:"files,omitempty" yaml:"files,omitempty"`
	Reason    string                 `json:"reason,omitempty" yaml:"reason,omitempty"`
	Stats     suppliers.Stats        `json:"stats" yaml:"stats"`
	UpdatedAt time.Time              `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Stats aggregates corrections across the run.
type Stats struct {
	Dropped          int `json:"dropped" yaml:"dropped"`
	Clamped          int `json:"clamped" yaml:"clamped"`
	Thresholded      int `json:"thresholded" yaml:"thresholded"`
	Suppressed       int `json:"suppressed" yaml:"suppressed"`
	Backordered      int `json:"backordered" yaml:"backordered"`
	DisplayCorrected int `json:"display_corrected" yaml:"display_corrected"`
	OrdersCorrected  int `json:"orders_corrected" yaml:"orders_corrected"`
}

// Result represents the outcome of a reconciliation run.
type Result struct {
	RunID string

	// Output tables
	Inventory *inventory.Table
	Floor     *floor.Result
	Listings  *marketplace.ListingResult
	Orders    *marketplace.OrderResult
	Ledger    *ledger.Ledger
	StoreSync []storesync.Batch
	Staleness []ledger.Staleness
	Suppliers []SupplierOutcome
	Stats     Stats
	SyncStats storesync.Stats

	// Metadata
	Metadata ResultMetadata

	// Issues
	Errors   []error
	Warnings []error
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	Concurrency int
}

// NewResult creates a new result with defaults.
func NewResult(runID string, start time.Time) *Result {
	return &Result{
		RunID:    runID,
		Errors:   []error{},
		Warnings: []error{},
		Metadata: ResultMetadata{StartTime: start},
	}
}

// IsSuccess returns true if no stage or supplier failed.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// Outcome returns the outcome of one supplier.
func (r *Result) Outcome(code inventory.SupplierCode) (SupplierOutcome, bool) {
	for _, o := range r.Suppliers {
		if o.Code == code {
			return o, true
		}
	}
	return SupplierOutcome{}, false
}

// Count returns the number of suppliers with the given status.
func (r *Result) Count(status Status) int {
	n := 0
	for _, o := range r.Suppliers {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	status := "Reconciliation completed"
	if !r.IsSuccess() {
		status = fmt.Sprintf("Reconciliation completed with %d errors", len(r.Errors))
	}
	return fmt.Sprintf("%s. %d suppliers updated, %d skipped, %d failed; %d canonical rows; %d warnings.",
		status,
		r.Count(StatusUpdated), r.Count(StatusSkipped), r.Count(StatusFailed),
		r.Inventory.Len(), len(r.Warnings))
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize(end time.Time) {
	r.Metadata.EndTime = end
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
