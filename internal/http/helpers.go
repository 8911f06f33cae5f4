package http

import (
	"strings"

	"spendtrend/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// page slices txs by offset and limit. A zero limit keeps everything after
// offset.
func page(txs []core.Transaction, limit, offset int) []core.Transaction {
	if offset >= len(txs) {
		return []core.Transaction{}
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}
