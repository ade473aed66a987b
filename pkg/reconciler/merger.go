package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/ledger"
	"github.com/agentstation/stockmap/pkg/logging"
)

// merger applies normalized feeds to the canonical table one supplier at a
// time and records each success in the ledger.
type merger struct {
	table  *inventory.Table
	ledger *ledger.Ledger
	clock  func() time.Time
}

// apply merges one supplier feed and returns its outcome. Failures leave the
// supplier's previous rows in place.
func (m *merger) apply(ctx context.Context, sf supplierFeed, res *Result) SupplierOutcome {
	s := sf.supplier
	logger := logging.Ctx(logging.WithSupplier(ctx, string(s.Code)))
	outcome := SupplierOutcome{Code: s.Code, Name: s.Name}
	if sf.feed != nil {
		outcome.Files = sf.feed.Files
	}

	if sf.err != nil {
		outcome.Reason = sf.err.Error()
		if errors.IsSourceUnavailable(sf.err) {
			outcome.Status = StatusSkipped
			res.Warnings = append(res.Warnings, sf.err)
			logger.Warn().Err(sf.err).Msg("Supplier feed unavailable; keeping previous rows")
		} else {
			outcome.Status = StatusFailed
			res.Errors = append(res.Errors, sf.err)
			logger.Error().Err(sf.err).Msg("Supplier normalization failed; keeping previous rows")
		}
		return outcome
	}

	outcome.Stats = sf.result.Stats
	res.Warnings = append(res.Warnings, sf.result.Warnings...)

	next, err := inventory.ReplaceSupplier(m.table, s.Code, sf.result.Rows)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		res.Errors = append(res.Errors, err)
		logger.Error().Err(err).Msg("Failed to merge supplier rows")
		return outcome
	}
	m.table = next

	at := sf.feed.ReceivedAt
	if at.IsZero() {
		at = m.clock()
	}
	entry := m.ledger.Record(s.Code, at)

	outcome.Status = StatusUpdated
	outcome.Rows = len(sf.result.Rows)
	outcome.UpdatedAt = entry.UpdatedAt

	res.Stats.Dropped += sf.result.Stats.Dropped()
	res.Stats.Clamped += sf.result.Stats.Clamped
	res.Stats.Thresholded += sf.result.Stats.Thresholded

	logger.Info().
		Int("rows", outcome.Rows).
		Int("dropped", sf.result.Stats.Dropped()).
		Int("clamped", sf.result.Stats.Clamped).
		Int("thresholded", sf.result.Stats.Thresholded).
		Str("ledger_date", entry.Date).
		Msg("Supplier updated")
	return outcome
}
