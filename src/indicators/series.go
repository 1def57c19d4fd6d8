package indicators

import (
	"math"

	"mtf-trader/src/models"
)

// Series is a candle sequence annotated with derived indicator columns.
// Columns not computed for a given timeframe stay nil; defined values start
// only once each indicator's lookback window has filled.
type Series struct {
	Candles  []models.Candle
	FastSma  []float64
	SlowSma  []float64
	Rsi      []float64
	TrendSma []float64
}

// NewPrimarySeries annotates the signal timeframe with fast/slow SMAs and RSI.
func NewPrimarySeries(candles []models.Candle, fastPeriod, slowPeriod, rsiPeriod int) *Series {
	closes := models.Closes(candles)

	return &Series{
		Candles: candles,
		FastSma: Sma(closes, fastPeriod),
		SlowSma: Sma(closes, slowPeriod),
		Rsi:     Rsi(closes, rsiPeriod),
	}
}

// NewTrendSeries annotates the confirmation timeframe with the trend SMA.
func NewTrendSeries(candles []models.Candle, trendPeriod int) *Series {
	return &Series{
		Candles:  candles,
		TrendSma: Sma(models.Closes(candles), trendPeriod),
	}
}

func (s *Series) Len() int {
	return len(s.Candles)
}

// Defined reports whether an indicator column holds a usable value at index i.
func Defined(column []float64, i int) bool {
	return i >= 0 && i < len(column) && !math.IsNaN(column[i])
}
