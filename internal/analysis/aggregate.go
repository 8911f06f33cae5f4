// Package analysis aggregates a ledger into totals and time series.
//
// Every function is a pure read of the ledger it is given.
package analysis

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"spendtrend/internal/core"
)

// TotalSpending sums every amount in the ledger. An empty ledger totals zero.
func TotalSpending(l core.Ledger) decimal.Decimal {
	total := decimal.Zero
	l.Each(func(tx core.Transaction) {
		total = total.Add(tx.Amount)
	})
	return total
}

// CategoryTotals sums amounts per category label.
func CategoryTotals(l core.Ledger) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	l.Each(func(tx core.Transaction) {
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	})
	return totals
}

// RankCategories returns category totals ordered by total descending,
// ties broken by category name ascending.
func RankCategories(l core.Ledger) []core.CategoryTotal {
	totals := CategoryTotals(l)
	out := make([]core.CategoryTotal, 0, len(totals))
	for c, t := range totals {
		out = append(out, core.CategoryTotal{Category: c, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategory returns the category with the largest total. Exact ties go
// to the lexicographically smallest label.
func TopCategory(l core.Ledger) (core.CategoryTotal, error) {
	if l.IsEmpty() {
		return core.CategoryTotal{}, fmt.Errorf("top category: %w", core.ErrEmptyData)
	}
	return RankCategories(l)[0], nil
}

// MonthlySeries buckets transactions by calendar month and returns the
// sums in chronological order. Months without transactions are absent.
func MonthlySeries(l core.Ledger) []core.MonthTotal {
	buckets := make(map[core.Month]decimal.Decimal)
	l.Each(func(tx core.Transaction) {
		m := tx.Date.Month()
		buckets[m] = buckets[m].Add(tx.Amount)
	})
	out := make([]core.MonthTotal, 0, len(buckets))
	for m, t := range buckets {
		out = append(out, core.MonthTotal{Month: m, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// DailyTotals sums amounts per calendar date, ascending.
func DailyTotals(l core.Ledger) []core.DayTotal {
	buckets := make(map[core.Date]decimal.Decimal)
	l.Each(func(tx core.Transaction) {
		buckets[tx.Date] = buckets[tx.Date].Add(tx.Amount)
	})
	out := make([]core.DayTotal, 0, len(buckets))
	for d, t := range buckets {
		out = append(out, core.DayTotal{Date: d, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// AverageMonthlySpending is the mean of the monthly totals over the months
// present in the ledger, not over the elapsed calendar span.
func AverageMonthlySpending(l core.Ledger) (decimal.Decimal, error) {
	series := MonthlySeries(l)
	if len(series) == 0 {
		return decimal.Zero, fmt.Errorf("average monthly spending: %w", core.ErrEmptyData)
	}
	sum := decimal.Zero
	for _, m := range series {
		sum = sum.Add(m.Total)
	}
	return sum.Div(decimal.NewFromInt(int64(len(series)))), nil
}

// Summarize computes the headline figures of a non-empty ledger.
func Summarize(l core.Ledger) (core.Summary, error) {
	if l.IsEmpty() {
		return core.Summary{}, fmt.Errorf("summarize: %w", core.ErrEmptyData)
	}
	avg, err := AverageMonthlySpending(l)
	if err != nil {
		return core.Summary{}, err
	}
	top, err := TopCategory(l)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summary{
		Total:          TotalSpending(l),
		AverageMonthly: avg,
		Top:            top,
		Transactions:   l.Len(),
		Months:         len(MonthlySeries(l)),
	}, nil
}
