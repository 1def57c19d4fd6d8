package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCsvRoundTrip(t *testing.T) {
	entryTime := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	exitTime := entryTime.Add(3 * time.Minute)

	ledger := NewLedger()
	_, err := ledger.RecordEntry(entryTime, "BTCUSDT", 68000.5, 0.001, "12345", "FILLED")
	require.NoError(t, err)
	_, err = ledger.RecordExit(exitTime, 68100.25, "12346", "FILLED")
	require.NoError(t, err)
	_, err = ledger.RecordEntry(exitTime.Add(time.Minute), "BTCUSDT", 68050.0, 0.001, "12347", "NEW")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, SaveLedgerCsv(path, ledger.Records()))

	loaded, err := LoadLedgerCsv(path)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for i, original := range ledger.Records() {
		got := loaded[i]

		assert.True(t, original.Timestamp.Equal(got.Timestamp), "record %d timestamp", i)
		assert.Equal(t, original.Symbol, got.Symbol)
		assert.Equal(t, original.Side, got.Side)
		assert.Equal(t, original.EntryPrice, got.EntryPrice)
		assert.Equal(t, original.Quantity, got.Quantity)
		assert.Equal(t, original.OrderID, got.OrderID)
		assert.Equal(t, original.Status, got.Status)

		if original.ExitTime == nil {
			assert.Nil(t, got.ExitTime)
			assert.Nil(t, got.ExitPrice)
			assert.Nil(t, got.Pnl)
			assert.Nil(t, got.ReturnPct)
		} else {
			require.NotNil(t, got.ExitTime)
			assert.True(t, original.ExitTime.Equal(*got.ExitTime))
			assert.Equal(t, *original.ExitPrice, *got.ExitPrice)
			assert.Equal(t, *original.Pnl, *got.Pnl)
			assert.Equal(t, *original.ReturnPct, *got.ReturnPct)
		}
	}
}

func TestLoadLedgerCsvMissingFile(t *testing.T) {
	_, err := LoadLedgerCsv(filepath.Join(t.TempDir(), "does_not_exist.csv"))
	assert.ErrorIs(t, err, LedgerNotFoundErr)
}

func TestLoadLedgerCsvEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	// a headered file with zero rows is what an empty session writes
	require.NoError(t, SaveLedgerCsv(path, nil))

	_, err := LoadLedgerCsv(path)
	assert.ErrorIs(t, err, EmptyLedgerErr)
}
