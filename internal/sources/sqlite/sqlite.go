// Package sqlite reads a ledger from an existing SQLite database with a
// caller supplied query. The database is opened read-only.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	_ "modernc.org/sqlite"

	"spendtrend/internal/ingest"
	"spendtrend/internal/sources"
)

type Source struct {
	db    *sql.DB
	path  string
	query string
}

var _ sources.Source = (*Source)(nil)

// Open opens path read-only. The query's result columns become the table
// header, so aliases apply to them like to any CSV header.
func Open(path, query string) (*Source, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Source{db: db, path: path, query: query}, nil
}

func (s *Source) Name() string {
	return "sqlite:" + filepath.Base(s.path)
}

func (s *Source) ReadTable(ctx context.Context) (ingest.Table, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return ingest.Table{}, fmt.Errorf("read columns: %w", err)
	}

	var records [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ingest.Table{}, fmt.Errorf("scan row %d: %w", len(records)+1, err)
		}
		records = append(records, sources.CellStrings(vals))
	}
	if err := rows.Err(); err != nil {
		return ingest.Table{}, fmt.Errorf("iterate rows: %w", err)
	}
	return ingest.NewTable(cols, records), nil
}

func (s *Source) Close() error {
	return s.db.Close()
}
