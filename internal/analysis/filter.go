package analysis

import (
	"sort"

	"spendtrend/internal/core"
)

// FilterDateRange keeps transactions dated within [start, end], both ends
// inclusive. A range whose start is after its end is rejected.
func FilterDateRange(l core.Ledger, start, end core.Date) (core.Ledger, error) {
	if start.After(end.Time) {
		return core.Ledger{}, &core.InvalidRangeError{Start: start, End: end}
	}
	return l.Filter(func(tx core.Transaction) bool {
		return !tx.Date.Before(start.Time) && !tx.Date.After(end.Time)
	}), nil
}

// FilterCategory keeps transactions whose category equals category exactly.
func FilterCategory(l core.Ledger, category string) core.Ledger {
	return l.Filter(func(tx core.Transaction) bool {
		return tx.Category == category
	})
}

// Categories lists the distinct category labels, sorted.
func Categories(l core.Ledger) []string {
	seen := make(map[string]struct{})
	l.Each(func(tx core.Transaction) {
		seen[tx.Category] = struct{}{}
	})
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest transaction dates.
func DateBounds(l core.Ledger) (first, last core.Date, err error) {
	if l.IsEmpty() {
		return core.Date{}, core.Date{}, core.ErrEmptyData
	}
	l.Each(func(tx core.Transaction) {
		if first.IsZero() || tx.Date.Before(first.Time) {
			first = tx.Date
		}
		if last.IsZero() || tx.Date.After(last.Time) {
			last = tx.Date
		}
	})
	return first, last, nil
}
