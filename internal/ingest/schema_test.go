package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrend/internal/core"
)

func TestValidateCanonicalizesVariantHeaders(t *testing.T) {
	table := NewTable(
		[]string{"Date ", "Description", "Amount", "Categroy", "Notes"},
		[][]string{{"2025-01-05", "milk", "10", "groceries", "x"}},
	)

	got, err := Validate(table, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "description", "amount", "category", "Notes"}, got.Columns)
	assert.Equal(t, Row{"date": "2025-01-05", "description": "milk", "amount": "10", "category": "groceries", "Notes": "x"}, got.Rows[0])

	// input table is untouched
	assert.Equal(t, "Date ", table.Columns[0])
	assert.Contains(t, table.Rows[0], "Date ")
}

func TestValidateMissingColumns(t *testing.T) {
	table := NewTable([]string{"Date", "Amount"}, nil)

	_, err := Validate(table, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchema))

	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"description", "category"}, se.Missing)
}

func TestValidateIsCaseSensitive(t *testing.T) {
	table := NewTable([]string{"DATE", "description", "amount", "category"}, nil)

	_, err := Validate(table, nil)
	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"date"}, se.Missing)
}

func TestValidateRejectsDuplicateMapping(t *testing.T) {
	table := NewTable([]string{"date", "description", "amount", "Category", "Categroy"}, nil)

	_, err := Validate(table, nil)
	var se *core.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Missing)
	assert.Equal(t, []string{"category"}, se.Duplicate)
}

func TestParseAliases(t *testing.T) {
	doc := []byte(`
aliases:
  date: ["Posted On", " Booking Date "]
  category: ["Kategorie"]
`)
	aliases, err := ParseAliases(doc)
	require.NoError(t, err)

	c, ok := aliases.Canonical("Booking Date")
	assert.True(t, ok)
	assert.Equal(t, FieldDate, c)
	c, ok = aliases.Canonical("Categroy")
	assert.True(t, ok, "defaults are kept")
	assert.Equal(t, FieldCategory, c)

	table := NewTable([]string{"Posted On", "Description", "Amount", "Kategorie"}, nil)
	_, err = Validate(table, aliases)
	assert.NoError(t, err)
}

func TestParseAliasesErrors(t *testing.T) {
	_, err := ParseAliases([]byte("aliases:\n  when: [\"Day\"]\n"))
	assert.ErrorContains(t, err, "unknown field")

	_, err = ParseAliases([]byte("aliases:\n  date: [\"Amount\"]\n"))
	assert.ErrorContains(t, err, "maps to both")

	_, err = ParseAliases([]byte("aliases: [oops"))
	assert.ErrorContains(t, err, "decode alias file")
}
