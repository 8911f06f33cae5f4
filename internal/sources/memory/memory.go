// Package memory is an in-process ledger source used by tests and demos.
package memory

import (
	"context"
	"sync"

	"spendtrend/internal/ingest"
	"spendtrend/internal/sources"
)

type Store struct {
	mu      sync.Mutex
	name    string
	header  []string
	records [][]string
	err     error
}

var _ sources.Source = (*Store)(nil)

func New(name string, header []string, records ...[]string) *Store {
	s := &Store{name: name, header: append([]string(nil), header...)}
	for _, r := range records {
		s.records = append(s.records, append([]string(nil), r...))
	}
	return s
}

func (s *Store) Name() string {
	return s.name
}

// Append adds a raw row.
func (s *Store) Append(record ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, append([]string(nil), record...))
}

// FailWith makes every later read return err.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) ReadTable(ctx context.Context) (ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Table{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ingest.Table{}, s.err
	}
	return ingest.NewTable(s.header, s.records), nil
}
