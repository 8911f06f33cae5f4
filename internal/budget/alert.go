package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"spendtrend/internal/core"
)

// Alert is raised when a verdict comes back over budget.
type Alert struct {
	SessionID string          `json:"session_id,omitempty"`
	Source    string          `json:"source,omitempty"`
	Category  string          `json:"category,omitempty"`
	Month     core.Month      `json:"month"`
	Spent     decimal.Decimal `json:"spent"`
	Threshold decimal.Decimal `json:"threshold"`
	Overage   decimal.Decimal `json:"overage"`
	RaisedAt  time.Time       `json:"raised_at"`
}

// AlertFor builds an Alert from v. It returns false when v is within budget
// or carries no month.
func AlertFor(v Verdict, at time.Time) (Alert, bool) {
	if !v.IsOver() || v.Month == nil {
		return Alert{}, false
	}
	return Alert{
		Month:     *v.Month,
		Spent:     v.Spent,
		Threshold: v.Threshold,
		Overage:   v.Overage(),
		RaisedAt:  at.UTC(),
	}, true
}
