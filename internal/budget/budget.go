// Package budget compares the latest monthly spend against a threshold.
package budget

import (
	"github.com/shopspring/decimal"

	"spendtrend/internal/core"
)

type Status string

const (
	WithinBudget Status = "within_budget"
	OverBudget   Status = "over_budget"
)

// Verdict is the outcome of a budget check. Delta is the overage when
// over budget and the headroom otherwise; it is never negative.
type Verdict struct {
	Status    Status          `json:"status"`
	Month     *core.Month     `json:"month,omitempty"`
	Spent     decimal.Decimal `json:"spent"`
	Threshold decimal.Decimal `json:"threshold"`
	Delta     decimal.Decimal `json:"delta"`
}

func (v Verdict) IsOver() bool {
	return v.Status == OverBudget
}

// Overage returns how much the month went over, or zero.
func (v Verdict) Overage() decimal.Decimal {
	if v.IsOver() {
		return v.Delta
	}
	return decimal.Zero
}

// Headroom returns how much budget is left, or zero.
func (v Verdict) Headroom() decimal.Decimal {
	if v.IsOver() {
		return decimal.Zero
	}
	return v.Delta
}

// Evaluate checks the last entry of series, which is the most recent month
// with data and not necessarily the current calendar month. An empty series
// spends zero and is always within budget. Spend equal to the threshold is
// within budget.
func Evaluate(series []core.MonthTotal, threshold decimal.Decimal) (Verdict, error) {
	if threshold.IsNegative() {
		return Verdict{}, core.ErrNegativeThreshold
	}

	v := Verdict{Spent: decimal.Zero, Threshold: threshold}
	if n := len(series); n > 0 {
		last := series[n-1]
		v.Month = &last.Month
		v.Spent = last.Total
	}

	if v.Spent.GreaterThan(threshold) {
		v.Status = OverBudget
		v.Delta = v.Spent.Sub(threshold)
	} else {
		v.Status = WithinBudget
		v.Delta = threshold.Sub(v.Spent)
	}
	return v, nil
}
