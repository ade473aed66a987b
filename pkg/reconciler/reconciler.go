// Package reconciler runs the inventory reconciliation pipeline. It loads
// and normalizes every selected supplier feed, merges the results into the
// canonical table in registry order, and derives the floor, listing and
// order views from it.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/ledger"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/marketplace"
	"github.com/agentstation/stockmap/pkg/storesync"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// Reconciler is the main interface for running the pipeline.
type Reconciler interface {
	// Run executes one reconciliation. On cancellation it returns the
	// partial result together with an error matching errors.ErrCanceled.
	Run(ctx context.Context, in Inputs) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	registry    *suppliers.Registry
	codes       []inventory.SupplierCode
	concurrency int
	clock       func() time.Time
	staleAfter  time.Duration
	locationID  string
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if _, err := options.registry.Select(options.codes...); err != nil {
		return nil, err
	}
	return &reconciler{
		registry:    options.registry,
		codes:       options.codes,
		concurrency: options.concurrency,
		clock:       options.clock,
		staleAfter:  options.staleAfter,
		locationID:  options.locationID,
	}, nil
}

// runContext holds shared state for one run.
type runContext struct {
	ctx       context.Context
	logger    *zerolog.Logger
	in        Inputs
	suppliers []*suppliers.Supplier
	result    *Result
}

// Run performs reconciliation with clean step-by-step flow.
func (r *reconciler) Run(ctx context.Context, in Inputs) (*Result, error) {
	// Step 1: Initialize context and validate
	rc, err := r.initialize(ctx, in)
	if err != nil {
		return nil, err
	}
	res := rc.result

	// Step 2 and 3: Load, normalize and merge suppliers
	if err := r.reconcileSuppliers(rc); err != nil {
		return r.finish(rc), err
	}

	// Step 4: Backorders
	if err := r.checkpoint(rc, "backorders"); err != nil {
		return r.finish(rc), err
	}
	res.Inventory, res.Stats.Backordered = inventory.ApplyBackorders(res.Inventory, in.Backorders)

	// Step 5: Duplicate suppression
	res.Inventory, res.Stats.Suppressed = inventory.RemoveDuplicates(res.Inventory, in.Duplicates)
	rc.logger.Info().
		Int("rows", res.Inventory.Len()).
		Int("backordered", res.Stats.Backordered).
		Int("suppressed", res.Stats.Suppressed).
		Msg("Canonical inventory built")

	// Step 6: Floor
	if err := r.checkpoint(rc, "floor"); err != nil {
		return r.finish(rc), err
	}
	r.reconcileFloor(rc)

	// Step 7: Listings
	if err := r.checkpoint(rc, "listings"); err != nil {
		return r.finish(rc), err
	}
	r.reconcileListings(rc)

	// Step 8: Orders
	if err := r.checkpoint(rc, "orders"); err != nil {
		return r.finish(rc), err
	}
	r.reconcileOrders(rc)

	// Step 9: Storefront physical counts
	r.planStoreSync(rc)

	// Step 10: Staleness
	r.staleness(rc)

	// Step 11: Finalize
	return r.finish(rc), nil
}

// initialize sets up the run context.
func (r *reconciler) initialize(ctx context.Context, in Inputs) (*runContext, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	list, err := r.registry.Select(r.codes...)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	if in.Ledger == nil {
		in.Ledger = ledger.New()
	}

	res := NewResult(runID, r.clock())
	res.Inventory = in.Base
	if res.Inventory == nil {
		res.Inventory = inventory.NewTable()
	}
	res.Ledger = in.Ledger
	res.Metadata.Concurrency = r.concurrency

	logger := logging.FromContext(ctx)
	logger.Info().
		Int("suppliers", len(list)).
		Int("base_rows", res.Inventory.Len()).
		Int("concurrency", r.concurrency).
		Msg("Starting reconciliation")

	return &runContext{
		ctx:       ctx,
		logger:    logger,
		in:        in,
		suppliers: list,
		result:    res,
	}, nil
}

// checkpoint stops the run between stages when the context is done.
func (r *reconciler) checkpoint(rc *runContext, stage string) error {
	if err := rc.ctx.Err(); err != nil {
		rc.logger.Warn().Str("stage", stage).Msg("Reconciliation canceled")
		return errors.Canceled(stage, err)
	}
	return nil
}

// reconcileSuppliers collects every feed and merges them in registry order.
func (r *reconciler) reconcileSuppliers(rc *runContext) error {
	if rc.in.Source == nil {
		rc.logger.Debug().Msg("No feed source; keeping base inventory")
		return nil
	}

	feeds := newCollector(rc.in.Source, r.concurrency).collect(rc.ctx, rc.suppliers)
	m := &merger{table: rc.result.Inventory, ledger: rc.in.Ledger, clock: r.clock}

	// Merges are copy-on-write, so stopping here leaves a whole generation.
	// Feeds loaded before a cancellation are still merged.
	defer func() { rc.result.Inventory = m.table }()
	for _, sf := range feeds {
		if errors.IsCanceled(sf.err) {
			rc.logger.Warn().Str("supplier", string(sf.supplier.Code)).Msg("Reconciliation canceled")
			return sf.err
		}
		rc.result.Suppliers = append(rc.result.Suppliers, m.apply(rc.ctx, sf, rc.result))
	}
	return nil
}

func (r *reconciler) reconcileFloor(rc *runContext) {
	if rc.in.Floor == nil {
		return
	}
	fl, err := floor.Reconcile(rc.in.Floor, rc.result.Inventory)
	if err != nil {
		rc.result.Errors = append(rc.result.Errors, err)
		rc.logger.Error().Err(err).Msg("Floor reconciliation failed; continuing without floor")
		return
	}
	rc.result.Floor = fl
	rc.result.Warnings = append(rc.result.Warnings, fl.Warnings...)
	rc.result.Stats.DisplayCorrected = fl.Stats.DisplayUnparsed
	rc.logger.Info().
		Int("rows", fl.Len()).
		Int("display_corrected", fl.Stats.DisplayUnparsed).
		Int("negative", fl.Stats.Negative).
		Msg("Floor reconciled")
}

func (r *reconciler) reconcileListings(rc *runContext) {
	if rc.in.Listings == nil {
		return
	}
	lr, err := marketplace.EnrichListings(rc.in.Listings, rc.result.Inventory, rc.result.Floor)
	if err != nil {
		rc.result.Errors = append(rc.result.Errors, err)
		rc.logger.Error().Err(err).Msg("Listing enrichment failed")
		return
	}
	rc.result.Listings = lr
	rc.result.Warnings = append(rc.result.Warnings, lr.Warnings...)
	rc.logger.Info().Int("rows", lr.Len()).Msg("Listings enriched")
}

func (r *reconciler) reconcileOrders(rc *runContext) {
	if rc.in.Orders == nil {
		return
	}
	if rc.result.Listings == nil {
		rc.result.Warnings = append(rc.result.Warnings,
			errors.NewDataQualityWarning("orders", "", 0, "orders skipped because listings are unavailable"))
		return
	}
	orders, err := marketplace.EnrichOrders(rc.in.Orders, rc.result.Listings, rc.result.Floor, rc.result.Inventory, rc.in.History)
	if err != nil {
		rc.result.Errors = append(rc.result.Errors, err)
		rc.logger.Error().Err(err).Msg("Order enrichment failed")
		return
	}
	rc.result.Orders = orders
	rc.result.Warnings = append(rc.result.Warnings, orders.Warnings...)
	rc.result.Stats.OrdersCorrected = orders.Stats.QuantityCorrected
	rc.logger.Info().Int("rows", orders.Len()).Msg("Orders enriched")
}

func (r *reconciler) planStoreSync(rc *runContext) {
	if len(rc.in.Variations) == 0 || rc.result.Floor == nil {
		return
	}
	batches, stats, err := storesync.Plan(rc.in.Variations, rc.result.Floor.Rows,
		storesync.WithLocationID(r.locationID), storesync.WithClock(r.clock))
	if err != nil {
		rc.result.Errors = append(rc.result.Errors, err)
		return
	}
	rc.result.StoreSync = batches
	rc.result.SyncStats = stats
	rc.logger.Info().
		Int("batches", stats.Batches).
		Int("matched", stats.Matched).
		Int("unmatched", stats.Unmatched).
		Msg("Planned storefront counts")
}

func (r *reconciler) staleness(rc *runContext) {
	if r.staleAfter == 0 {
		return
	}
	codes := make([]inventory.SupplierCode, len(rc.suppliers))
	for i, s := range rc.suppliers {
		codes[i] = s.Code
	}
	rc.result.Staleness = rc.in.Ledger.Stale(r.clock(), r.staleAfter, codes)
	for _, s := range rc.result.Staleness {
		rc.result.Warnings = append(rc.result.Warnings, s.Warning())
	}
}

// finish finalizes the result and logs the summary.
func (r *reconciler) finish(rc *runContext) *Result {
	res := rc.result
	res.Finalize(r.clock())
	rc.logger.Info().
		Int("updated", res.Count(StatusUpdated)).
		Int("skipped", res.Count(StatusSkipped)).
		Int("failed", res.Count(StatusFailed)).
		Int("warnings", len(res.Warnings)).
		Int("errors", len(res.Errors)).
		Dur("duration", res.Metadata.Duration).
		Msg("Reconciliation finished")
	return res
}
