package core

import "github.com/shopspring/decimal"

// CategoryTotal is an amount aggregated by category label.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is one entry of a monthly series.
type MonthTotal struct {
	Month Month           `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// DayTotal is one entry of a daily series.
type DayTotal struct {
	Date  Date            `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Summary holds the headline figures of a ledger.
type Summary struct {
	Total          decimal.Decimal `json:"total"`
	AverageMonthly decimal.Decimal `json:"average_monthly"`
	Top            CategoryTotal   `json:"top_category"`
	Transactions   int             `json:"transactions"`
	Months         int             `json:"months"`
}
