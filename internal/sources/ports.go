// Package sources defines where ledgers come from. Every adapter hands back
// a raw ingest.Table; validation and cleansing happen in one place, after
// the read.
package sources

import (
	"context"

	"spendtrend/internal/ingest"
)

// Ports for inbound ledger adapters.
type (
	TableReader interface {
		ReadTable(ctx context.Context) (ingest.Table, error)
	}

	// Source is a TableReader with a name used in logs and session metadata.
	Source interface {
		TableReader
		Name() string
	}
)
