package reconciler

import (
	"context"
	"time"

	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/ledger"
	"github.com/agentstation/stockmap/pkg/marketplace"
	"github.com/agentstation/stockmap/pkg/storesync"
	"github.com/agentstation/stockmap/pkg/suppliers"
	"github.com/agentstation/stockmap/pkg/table"
)

// Feed is the raw input of one supplier for one run.
type Feed struct {
	Tables     []*table.Table
	Files      []string
	ReceivedAt time.Time
}

// FeedSource obtains a supplier's raw feed. Implementations should return
// errors satisfying errors.IsSourceUnavailable when the feed is missing.
type FeedSource interface {
	Load(ctx context.Context, s *suppliers.Supplier) (*Feed, error)
}

// FeedSourceFunc adapts a function to FeedSource.
type FeedSourceFunc func(ctx context.Context, s *suppliers.Supplier) (*Feed, error)

// Load calls f.
func (f FeedSourceFunc) Load(ctx context.Context, s *suppliers.Supplier) (*Feed, error) {
	return f(ctx, s)
}

// Inputs is everything a run consumes. Only Source is consulted for
// supplier feeds; the other tables are optional and their stages are
// skipped when nil.
type Inputs struct {
	// Base is the canonical table from the previous run.
	Base   *inventory.Table
	Source FeedSource

	Backorders []string
	Duplicates []inventory.DuplicateEntry

	Floor    *table.Table
	Listings *table.Table
	Orders   *table.Table

	Ledger  *ledger.Ledger
	History []marketplace.OrderHistoryEntry

	// Variations enables physical-count planning against the floor.
	Variations []storesync.Variation
}
