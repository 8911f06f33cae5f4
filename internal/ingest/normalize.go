package ingest

import (
	"errors"
	"strings"
	"time"

	"spendtrend/internal/core"
)

var errInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order; the first match wins. Day-first numeric
// layouts are deliberately absent: 01/02/2006 reads as January 2nd.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Stats reports what the best-effort cleanse kept and dropped. A dropped
// row is counted once, under the first failing field in date, amount,
// category order. Malformed rows never reached field coercion.
type Stats struct {
	Read            int `json:"read"`
	Kept            int `json:"kept"`
	Dropped         int `json:"dropped"`
	InvalidDate     int `json:"invalid_date"`
	InvalidAmount   int `json:"invalid_amount"`
	InvalidCategory int `json:"invalid_category"`
	Malformed       int `json:"malformed"`
}

// Add merges the counters of o into s.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Read:            s.Read + o.Read,
		Kept:            s.Kept + o.Kept,
		Dropped:         s.Dropped + o.Dropped,
		InvalidDate:     s.InvalidDate + o.InvalidDate,
		InvalidAmount:   s.InvalidAmount + o.InvalidAmount,
		InvalidCategory: s.InvalidCategory + o.InvalidCategory,
		Malformed:       s.Malformed + o.Malformed,
	}
}

// Normalize coerces a validated table into a ledger. Rows with an
// unparseable date or amount, or a blank category, are dropped silently;
// only the counters in Stats record them.
func Normalize(t Table) (core.Ledger, Stats) {
	stats := Stats{Read: len(t.Rows) + t.Malformed, Malformed: t.Malformed}
	txs := make([]core.Transaction, 0, len(t.Rows))

	for _, row := range t.Rows {
		date, err := ParseDate(row[FieldDate])
		if err != nil {
			stats.InvalidDate++
			continue
		}
		amount, err := core.ParseAmount(row[FieldAmount])
		if err != nil {
			stats.InvalidAmount++
			continue
		}
		category := strings.TrimSpace(row[FieldCategory])
		if category == "" {
			stats.InvalidCategory++
			continue
		}
		txs = append(txs, core.Transaction{
			Date:        date,
			Description: strings.TrimSpace(row[FieldDescription]),
			Amount:      amount,
			Category:    category,
		})
	}

	stats.Kept = len(txs)
	stats.Dropped = stats.Read - stats.Kept
	return core.NewLedger(txs), stats
}

// ParseDate coerces a raw cell into a calendar date, dropping any clock part.
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, errInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, errInvalidDate
}

// Load validates and normalizes a raw table in one step.
func Load(t Table, aliases Aliases) (core.Ledger, Stats, error) {
	valid, err := Validate(t, aliases)
	if err != nil {
		return core.Ledger{}, Stats{}, err
	}
	ledger, stats := Normalize(valid)
	return ledger, stats, nil
}
