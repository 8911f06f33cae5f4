// Package csvfile reads ledgers from CSV exports on disk or from an
// uploaded body.
package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"spendtrend/internal/ingest"
	"spendtrend/internal/sources"
)

// File reads a CSV export from a path.
type File struct {
	path string
}

// Reader reads a CSV export already held in memory, typically an upload.
type Reader struct {
	name string
	data []byte
}

var (
	_ sources.Source = (*File)(nil)
	_ sources.Source = (*Reader)(nil)
)

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string {
	return filepath.Base(f.path)
}

func (f *File) ReadTable(ctx context.Context) (ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Table{}, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("open ledger file: %w", err)
	}
	defer fh.Close()
	return ingest.ReadCSV(fh)
}

// FromReader buffers r fully so the table can be read more than once.
func FromReader(name string, r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &Reader{name: name, data: data}, nil
}

func (r *Reader) Name() string {
	return r.name
}

func (r *Reader) ReadTable(ctx context.Context) (ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Table{}, err
	}
	return ingest.ReadCSV(bytes.NewReader(r.data))
}
