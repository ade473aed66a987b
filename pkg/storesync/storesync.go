// Package storesync plans storefront physical-count updates from the POS
// floor extract. Delivery is left to a Pusher.
package storesync

import (
	"context"
	"strconv"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Change and state values understood by the storefront inventory API.
const (
	ChangePhysicalCount = "PHYSICAL_COUNT"
	StateInStock        = "IN_STOCK"
)

// Variation columns as exported from the storefront catalog.
const (
	ColumnObjectID = "object_id"
	ColumnUPC      = "upc"
)

// Variation is one storefront catalog variation.
type Variation struct {
	ObjectID string `json:"object_id" yaml:"object_id"`
	UPC      string `json:"upc" yaml:"upc"`
}

// PhysicalCount sets the absolute on-hand count of one variation.
type PhysicalCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	State           string `json:"state"`
	LocationID      string `json:"location_id"`
	Quantity        string `json:"quantity"`
	OccurredAt      string `json:"occurred_at"`
}

// Change is one inventory change request.
type Change struct {
	Type          string        `json:"type"`
	PhysicalCount PhysicalCount `json:"physical_count"`
}

// Batch is one batch-change request body.
type Batch struct {
	IdempotencyKey string   `json:"idempotency_key"`
	Changes        []Change `json:"changes"`
}

// Stats counts planning outcomes.
type Stats struct {
	Variations int `json:"variations" yaml:"variations"`
	Matched    int `json:"matched" yaml:"matched"`
	Unmatched  int `json:"unmatched" yaml:"unmatched"`
	MissingUPC int `json:"missing_upc" yaml:"missing_upc"`
	Clamped    int `json:"clamped" yaml:"clamped"`
	Batches    int `json:"batches" yaml:"batches"`
}

// Pusher delivers a batch to the storefront.
type Pusher interface {
	Push(ctx context.Context, batch Batch) error
}

// VariationsFromTable reads variations from an object_id/upc table.
func VariationsFromTable(raw *table.Table) ([]Variation, error) {
	if missing := raw.Missing(ColumnObjectID, ColumnUPC); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}
	out := make([]Variation, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		out = append(out, Variation{
			ObjectID: raw.Value(i, ColumnObjectID),
			UPC:      raw.Value(i, ColumnUPC),
		})
	}
	return out, nil
}

// Plan left-joins variations to floor rows on UPC and groups the resulting
// physical counts into batches. Variations without a floor row are dropped.
func Plan(variations []Variation, rows []floor.Row, opts ...Option) ([]Batch, Stats, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, Stats{}, err
	}

	onHand := make(map[string]int, len(rows))
	for _, r := range rows {
		key := quantity.Key(r.ItemLookupCode)
		if _, ok := onHand[key]; !ok && key != "" {
			onHand[key] = r.OnHand
		}
	}

	stats := Stats{Variations: len(variations)}
	occurredAt := o.clock().UTC().Format(constants.PhysicalCountTimeLayout)
	var changes []Change
	for _, v := range variations {
		upc := quantity.Key(v.UPC)
		if upc == "" || v.ObjectID == "" {
			stats.MissingUPC++
			continue
		}
		qty, ok := onHand[upc]
		if !ok {
			stats.Unmatched++
			continue
		}
		stats.Matched++
		if qty < 0 {
			stats.Clamped++
			qty = 0
		}
		changes = append(changes, Change{
			Type: ChangePhysicalCount,
			PhysicalCount: PhysicalCount{
				CatalogObjectID: v.ObjectID,
				State:           StateInStock,
				LocationID:      o.locationID,
				Quantity:        strconv.Itoa(qty),
				OccurredAt:      occurredAt,
			},
		})
	}

	var batches []Batch
	for start := 0; start < len(changes); start += o.batchSize {
		end := min(start+o.batchSize, len(changes))
		batches = append(batches, Batch{
			IdempotencyKey: o.idempotencyKey(),
			Changes:        changes[start:end],
		})
	}
	stats.Batches = len(batches)
	return batches, stats, nil
}

// PushAll sends batches in order. A failed batch is logged and the rest are
// still sent; cancellation stops at the next batch.
func PushAll(ctx context.Context, p Pusher, batches []Batch) (int, error) {
	logger := logging.FromContext(ctx)
	var errs []error
	sent := 0
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			return sent, errors.Canceled("storesync", err)
		}
		if err := p.Push(ctx, b); err != nil {
			logger.Error().Err(err).Int("batch", i).Str("idempotency_key", b.IdempotencyKey).Msg("Failed to push physical counts")
			errs = append(errs, err)
			continue
		}
		sent++
		logger.Debug().Int("batch", i).Int("changes", len(b.Changes)).Msg("Pushed physical counts")
	}
	return sent, errors.Join(errs...)
}
