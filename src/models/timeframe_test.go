package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframeDuration(t *testing.T) {
	t.Run("minutes", func(t *testing.T) {
		d, err := Timeframe("1m").Duration()
		assert.NoError(t, err)
		assert.Equal(t, time.Minute, d)

		d, err = Timeframe("15m").Duration()
		assert.NoError(t, err)
		assert.Equal(t, 15*time.Minute, d)
	})

	t.Run("hours", func(t *testing.T) {
		d, err := Timeframe("4h").Duration()
		assert.NoError(t, err)
		assert.Equal(t, 4*time.Hour, d)
	})

	t.Run("days", func(t *testing.T) {
		d, err := Timeframe("1d").Duration()
		assert.NoError(t, err)
		assert.Equal(t, 24*time.Hour, d)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := Timeframe("3w").Duration()
		assert.ErrorIs(t, err, UnknownTimeframeErr)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, tf := range []string{"", "m", "m1", "-1m", "0h"} {
			_, err := Timeframe(tf).Duration()
			assert.ErrorIs(t, err, UnknownTimeframeErr, "timeframe %q", tf)
		}
	})
}

func TestCandleIsClosed(t *testing.T) {
	open := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	candle := Candle{OpenTime: open}

	assert.False(t, candle.IsClosed(time.Minute, open.Add(30*time.Second)))
	assert.True(t, candle.IsClosed(time.Minute, open.Add(time.Minute)))
	assert.True(t, candle.IsClosed(time.Minute, open.Add(2*time.Minute)))
}

func TestValidateCandles(t *testing.T) {
	open := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	ordered := []Candle{
		{OpenTime: open},
		{OpenTime: open.Add(time.Minute)},
		{OpenTime: open.Add(2 * time.Minute)},
	}
	assert.NoError(t, ValidateCandles(ordered))

	duplicated := []Candle{
		{OpenTime: open},
		{OpenTime: open},
	}
	assert.ErrorIs(t, ValidateCandles(duplicated), CandlesOutOfOrderErr)

	reversed := []Candle{
		{OpenTime: open.Add(time.Minute)},
		{OpenTime: open},
	}
	assert.ErrorIs(t, ValidateCandles(reversed), CandlesOutOfOrderErr)
}
