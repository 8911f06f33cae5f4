package sources

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spendtrend/internal/core"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
)

// maxParallelReads bounds how many sources are read at once.
const maxParallelReads = 4

// Load reads one source and runs it through validation and normalization.
func Load(ctx context.Context, src Source, aliases ingest.Aliases, logger *log.Logger) (core.Ledger, ingest.Stats, error) {
	if logger == nil {
		logger = log.Discard()
	}
	t, err := src.ReadTable(ctx)
	if err != nil {
		return core.Ledger{}, ingest.Stats{}, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	ledger, stats, err := ingest.Load(t, aliases)
	if err != nil {
		return core.Ledger{}, stats, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	log.NewStructuredLogger(logger.WithComponent(log.ComponentSource)).
		LogIngest(ctx, "", src.Name(), log.NewFields().WithIngestStats(src.Name(), stats))
	return ledger, stats, nil
}

// LoadAll reads every source concurrently and concatenates the resulting
// ledgers in argument order. The first failure cancels the remaining reads.
func LoadAll(ctx context.Context, srcs []Source, aliases ingest.Aliases, logger *log.Logger) (core.Ledger, ingest.Stats, error) {
	ledgers := make([]core.Ledger, len(srcs))
	stats := make([]ingest.Stats, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, src := range srcs {
		g.Go(func() error {
			l, s, err := Load(ctx, src, aliases, logger)
			if err != nil {
				return err
			}
			ledgers[i], stats[i] = l, s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Ledger{}, ingest.Stats{}, err
	}

	var total ingest.Stats
	for _, s := range stats {
		total = total.Add(s)
	}
	var out core.Ledger
	return out.Concat(ledgers...), total, nil
}
