// Package ingest turns raw tabular exports into a cleansed ledger.
//
// The pipeline is Validate (column presence, canonical names) followed by
// Normalize (per-row coercion, silent exclusion of unusable rows).
package ingest

// Row maps a column name to its raw cell value.
type Row map[string]string

// Table is a header-driven raw table as read from a source.
type Table struct {
	Columns []string
	Rows    []Row

	// Malformed counts records the reader could not split into cells.
	Malformed int
}

// NewTable builds a Table from a header and positional records. Short
// records leave the trailing columns empty; extra cells are ignored.
func NewTable(header []string, records [][]string) Table {
	t := Table{
		Columns: append([]string(nil), header...),
		Rows:    make([]Row, 0, len(records)),
	}
	for _, rec := range records {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// HasColumn reports whether name is one of the table columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
