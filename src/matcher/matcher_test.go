package matcher

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtf-trader/src/models"
)

func record(side models.TradeSide, ts time.Time, entryPrice float64) *models.TradeRecord {
	return &models.TradeRecord{
		Timestamp:  ts,
		Symbol:     "BTCUSDT",
		Side:       side,
		EntryPrice: entryPrice,
		Quantity:   0.001,
	}
}

func TestMatchLedgers(t *testing.T) {
	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute

	t.Run("same side within window matches", func(t *testing.T) {
		candidate := []*models.TradeRecord{record(models.SideBuy, base, 100)}
		reference := []*models.TradeRecord{record(models.SideBuy, base.Add(2*time.Minute), 100.5)}

		report := MatchLedgers(candidate, reference, window)

		assert.Equal(t, 1, report.MatchedCount())
		assert.Empty(t, report.UnmatchedCandidate)
		assert.Empty(t, report.UnmatchedReference)
		assert.Equal(t, 100.0, report.MatchRate())

		match := report.Matches[0]
		assert.Equal(t, -2*time.Minute, match.TimeDelta)
		assert.InDelta(t, 0.5, match.PriceDeltaPct, 1e-9)
	})

	t.Run("outside window leaves both unmatched", func(t *testing.T) {
		candidate := []*models.TradeRecord{record(models.SideBuy, base, 100)}
		reference := []*models.TradeRecord{record(models.SideBuy, base.Add(window+time.Second), 100)}

		report := MatchLedgers(candidate, reference, window)

		assert.Equal(t, 0, report.MatchedCount())
		assert.Len(t, report.UnmatchedCandidate, 1)
		assert.Len(t, report.UnmatchedReference, 1)
		assert.Equal(t, 0.0, report.MatchRate())
	})

	t.Run("sides never cross match", func(t *testing.T) {
		candidate := []*models.TradeRecord{record(models.SideBuy, base, 100)}
		reference := []*models.TradeRecord{record(models.SideSell, base, 100)}

		report := MatchLedgers(candidate, reference, window)

		assert.Equal(t, 0, report.MatchedCount())
		assert.Len(t, report.UnmatchedCandidate, 1)
		assert.Len(t, report.UnmatchedReference, 1)
	})

	t.Run("each reference record used at most once", func(t *testing.T) {
		candidate := []*models.TradeRecord{
			record(models.SideBuy, base, 100),
			record(models.SideBuy, base.Add(time.Minute), 101),
		}
		reference := []*models.TradeRecord{record(models.SideBuy, base, 100)}

		report := MatchLedgers(candidate, reference, window)

		assert.Equal(t, 1, report.MatchedCount())
		assert.Len(t, report.UnmatchedCandidate, 1)
		assert.Empty(t, report.UnmatchedReference)
		assert.Equal(t, 50.0, report.MatchRate())
	})

	t.Run("greedy takes first available not globally best", func(t *testing.T) {
		// the first candidate takes the first in-window reference even
		// though the second reference is closer in time; accepted behavior
		candidate := []*models.TradeRecord{
			record(models.SideBuy, base.Add(10*time.Minute), 100),
			record(models.SideBuy, base.Add(12*time.Minute), 100),
		}
		reference := []*models.TradeRecord{
			record(models.SideBuy, base, 100),
			record(models.SideBuy, base.Add(11*time.Minute), 100),
		}

		report := MatchLedgers(candidate, reference, window)

		require.Equal(t, 2, report.MatchedCount())
		assert.Same(t, reference[0], report.Matches[0].Reference)
		assert.Same(t, reference[1], report.Matches[1].Reference)
	})

	t.Run("empty candidate ledger", func(t *testing.T) {
		report := MatchLedgers(nil, []*models.TradeRecord{record(models.SideBuy, base, 100)}, window)

		assert.Equal(t, 0, report.MatchedCount())
		assert.Equal(t, 0.0, report.MatchRate())
		assert.Len(t, report.UnmatchedReference, 1)
	})
}

func TestReportStats(t *testing.T) {
	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

	candidate := []*models.TradeRecord{
		record(models.SideBuy, base.Add(time.Minute), 100),
		record(models.SideBuy, base.Add(10*time.Minute), 200),
	}
	reference := []*models.TradeRecord{
		record(models.SideBuy, base, 101),
		record(models.SideBuy, base.Add(7*time.Minute), 201),
	}

	report := MatchLedgers(candidate, reference, 15*time.Minute)
	require.Equal(t, 2, report.MatchedCount())

	st := report.Stats()
	assert.InDelta(t, 120.0, st.MeanTimeDeltaSec, 1e-9)
	assert.InDelta(t, 120.0, st.MedianTimeDeltaSec, 1e-9)
	assert.InDelta(t, 180.0, st.MaxTimeDeltaSec, 1e-9)
	assert.InDelta(t, 0.75, st.MeanPriceDeltaPct, 1e-9)
}

func TestReportRender(t *testing.T) {
	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

	candidate := []*models.TradeRecord{record(models.SideBuy, base, 100)}
	reference := []*models.TradeRecord{record(models.SideBuy, base.Add(time.Minute), 100.2)}

	report := MatchLedgers(candidate, reference, 15*time.Minute)

	var buf bytes.Buffer
	report.Render(&buf)

	out := buf.String()
	assert.Contains(t, out, "Match Rate")
	assert.Contains(t, out, "100.0%")
}
