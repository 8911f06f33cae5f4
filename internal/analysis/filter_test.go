package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrend/internal/core"
)

func TestFilterDateRangeInclusive(t *testing.T) {
	l := core.NewLedger([]core.Transaction{
		tx(2025, 1, 31, "1", "a"),
		tx(2025, 2, 1, "2", "a"),
		tx(2025, 2, 15, "3", "b"),
		tx(2025, 3, 1, "4", "b"),
		tx(2025, 3, 2, "5", "b"),
	})

	got, err := FilterDateRange(l, core.NewDate(2025, 2, 1), core.NewDate(2025, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.True(t, TotalSpending(got).Equal(dec("9")))
	assert.Equal(t, 5, l.Len(), "source ledger unchanged")

	same, err := FilterDateRange(l, core.NewDate(2025, 2, 15), core.NewDate(2025, 2, 15))
	require.NoError(t, err)
	assert.Equal(t, 1, same.Len())
}

func TestFilterDateRangeRejectsInvertedRange(t *testing.T) {
	_, err := FilterDateRange(scenarioA(), core.NewDate(2025, 3, 1), core.NewDate(2025, 2, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidRange))

	var re *core.InvalidRangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, core.NewDate(2025, 3, 1), re.Start)
}

func TestFilterCategory(t *testing.T) {
	l := scenarioA()
	groceries := FilterCategory(l, "groceries")
	assert.Equal(t, 2, groceries.Len())
	assert.Equal(t, 0, FilterCategory(l, "Groceries").Len())

	// independent views over the same ledger
	assert.True(t, TotalSpending(l).Equal(dec("45")))
	assert.True(t, TotalSpending(groceries).Equal(dec("30")))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"groceries", "rent"}, Categories(scenarioA()))
	assert.Empty(t, Categories(core.Ledger{}))
}

func TestDateBounds(t *testing.T) {
	first, last, err := DateBounds(scenarioA())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", first.String())
	assert.Equal(t, "2025-02-10", last.String())

	_, _, err = DateBounds(core.Ledger{})
	assert.ErrorIs(t, err, core.ErrEmptyData)
}
