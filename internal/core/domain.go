package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a plain calendar date. The clock part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Month is a (year, month) bucket key.
	Month struct {
		Year  int
		Month time.Month
	}

	Transaction struct {
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"` // signed; refunds are negative spend
		Category    string          `json:"category"`
	}

	// Ledger is an immutable, ordered set of cleansed transactions.
	Ledger struct {
		txs []Transaction
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock and location of t, keeping its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Month returns the bucket the date falls in.
func (d Date) Month() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON shadows time.Time's RFC 3339 encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Start returns the first day of the month.
func (m Month) Start() Date {
	return NewDate(m.Year, int(m.Month), 1)
}

// Add returns the month n calendar months later (or earlier when n < 0).
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// NewLedger copies txs into a new ledger. Callers keep ownership of txs.
func NewLedger(txs []Transaction) Ledger {
	return Ledger{txs: append([]Transaction(nil), txs...)}
}

func (l Ledger) Len() int {
	return len(l.txs)
}

func (l Ledger) IsEmpty() bool {
	return len(l.txs) == 0
}

// Transactions returns a copy of the ledger rows in upload order.
func (l Ledger) Transactions() []Transaction {
	return append([]Transaction(nil), l.txs...)
}

// Each calls fn for every transaction in upload order.
func (l Ledger) Each(fn func(Transaction)) {
	for _, tx := range l.txs {
		fn(tx)
	}
}

// Filter returns a new ledger holding the transactions keep accepts.
func (l Ledger) Filter(keep func(Transaction) bool) Ledger {
	out := make([]Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return Ledger{txs: out}
}

// Concat returns a ledger with the rows of l followed by the rows of others.
func (l Ledger) Concat(others ...Ledger) Ledger {
	n := len(l.txs)
	for _, o := range others {
		n += len(o.txs)
	}
	out := make([]Transaction, 0, n)
	out = append(out, l.txs...)
	for _, o := range others {
		out = append(out, o.txs...)
	}
	return Ledger{txs: out}
}
