package sources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrend/internal/core"
	"spendtrend/internal/ingest"
	"spendtrend/internal/sources"
	"spendtrend/internal/sources/memory"
)

var header = []string{"Date", "Description", "Amount", "Category"}

func TestLoadAll_ConcatenatesInOrder(t *testing.T) {
	a := memory.New("a", header,
		[]string{"2024-01-01", "Rent", "900", "Housing"},
		[]string{"bad-date", "Oops", "1", "Food"},
	)
	b := memory.New("b", header,
		[]string{"2024-02-01", "Rent", "950", "Housing"},
	)

	ledger, stats, err := sources.LoadAll(context.Background(), []sources.Source{a, b}, ingest.DefaultAliases(), nil)
	require.NoError(t, err)

	txs := ledger.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, core.NewDate(2024, 1, 1), txs[0].Date)
	assert.True(t, txs[1].Amount.Equal(decimal.NewFromInt(950)))

	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 1, stats.InvalidDate)
}

func TestLoadAll_FailsOnSchemaError(t *testing.T) {
	good := memory.New("good", header, []string{"2024-01-01", "Rent", "900", "Housing"})
	bad := memory.New("bad", []string{"Date", "Amount"}, []string{"2024-01-01", "1"})

	_, _, err := sources.LoadAll(context.Background(), []sources.Source{good, bad}, ingest.DefaultAliases(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSchema)
	assert.Contains(t, err.Error(), "load bad")
}

func TestLoadAll_ReadError(t *testing.T) {
	src := memory.New("flaky", header)
	boom := errors.New("connection reset")
	src.FailWith(boom)

	_, _, err := sources.LoadAll(context.Background(), []sources.Source{src}, ingest.DefaultAliases(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("12.5"), "12.5"},
		{float64(12.5), "12.5"},
		{int64(-3), "-3"},
		{decimal.RequireFromString("4.20"), "4.2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sources.CellString(tt.in))
	}
}
