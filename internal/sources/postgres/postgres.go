// Package postgres reads a ledger from a PostgreSQL query.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spendtrend/internal/ingest"
	"spendtrend/internal/sources"
)

type Source struct {
	pool  *pgxpool.Pool
	db    string
	query string
}

var _ sources.Source = (*Source)(nil)

// Open connects to url and checks the connection. Every read runs query in
// a read-only transaction.
func Open(ctx context.Context, url, query string) (*Source, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Source{pool: pool, db: cfg.ConnConfig.Database, query: query}, nil
}

func (s *Source) Name() string {
	return "postgres:" + s.db
}

func (s *Source) ReadTable(ctx context.Context) (ingest.Table, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return ingest.Table{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, s.query)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("query ledger: %w", err)
	}
	t, err := collectTable(rows)
	if err != nil {
		return ingest.Table{}, err
	}
	return t, nil
}

func collectTable(rows pgx.Rows) (ingest.Table, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var records [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return ingest.Table{}, fmt.Errorf("decode row %d: %w", len(records)+1, err)
		}
		records = append(records, sources.CellStrings(vals))
	}
	if err := rows.Err(); err != nil {
		return ingest.Table{}, fmt.Errorf("iterate rows: %w", err)
	}
	return ingest.NewTable(cols, records), nil
}

func (s *Source) Close() {
	s.pool.Close()
}
