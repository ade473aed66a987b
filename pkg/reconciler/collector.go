package reconciler

import (
	"context"
	"sync"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// supplierFeed is the loaded and normalized feed of one supplier.
type supplierFeed struct {
	supplier *suppliers.Supplier
	feed     *Feed
	result   *suppliers.Result
	err      error
}

// collector loads and normalizes supplier feeds, optionally in parallel.
// Normalization is pure, so order of completion does not matter; callers
// merge in registry order.
type collector struct {
	source      FeedSource
	concurrency int
}

func newCollector(source FeedSource, concurrency int) *collector {
	return &collector{source: source, concurrency: max(concurrency, 1)}
}

// collect returns one supplierFeed per supplier, indexed like list.
func (c *collector) collect(ctx context.Context, list []*suppliers.Supplier) []supplierFeed {
	out := make([]supplierFeed, len(list))
	if c.concurrency == 1 {
		for i, s := range list {
			out[i] = c.one(ctx, s)
		}
		return out
	}

	type indexed struct {
		i    int
		feed supplierFeed
	}

	var wg sync.WaitGroup
	resultChan := make(chan indexed, len(list))
	sem := make(chan struct{}, c.concurrency)

	for i, s := range list {
		wg.Add(1)
		go func(i int, s *suppliers.Supplier) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			resultChan <- indexed{i: i, feed: c.one(ctx, s)}
		}(i, s)
	}

	wg.Wait()
	close(resultChan)

	for r := range resultChan {
		out[r.i] = r.feed
	}
	return out
}

// one loads and normalizes a single supplier.
func (c *collector) one(ctx context.Context, s *suppliers.Supplier) supplierFeed {
	sf := supplierFeed{supplier: s}
	if err := ctx.Err(); err != nil {
		sf.err = errors.Canceled("load", err)
		return sf
	}

	logger := logging.Ctx(logging.WithSupplier(ctx, string(s.Code)))

	feed, err := c.source.Load(ctx, s)
	if err != nil {
		if ctx.Err() != nil {
			sf.err = errors.Canceled("load", ctx.Err())
			return sf
		}
		sf.err = errors.WrapSourceUnavailable(string(s.Code), "", err)
		return sf
	}
	if feed == nil {
		sf.err = errors.NewSourceUnavailableError(string(s.Code), "", errors.New("feed source returned no feed"))
		return sf
	}
	sf.feed = feed

	logger.Debug().
		Strs("files", feed.Files).
		Int("tables", len(feed.Tables)).
		Msg("Loaded supplier feed")

	sf.result, sf.err = suppliers.Normalize(s, feed.Tables...)
	return sf
}
