package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRsi(t *testing.T) {
	t.Run("hand computed values", func(t *testing.T) {
		closes := []float64{44.0, 44.34, 44.09, 44.15, 43.61, 44.33}
		out := Rsi(closes, 3)

		for i := 0; i < 3; i++ {
			assert.True(t, math.IsNaN(out[i]), "index %d should be undefined", i)
		}

		assert.InDelta(t, 61.538461538, out[3], 1e-6)
		assert.InDelta(t, 7.058823529, out[4], 1e-6)
		assert.InDelta(t, 59.090909090, out[5], 1e-6)
	})

	t.Run("all gains saturate at 100", func(t *testing.T) {
		out := Rsi([]float64{1, 2, 3, 4, 5}, 3)

		assert.True(t, math.IsNaN(out[2]))
		assert.Equal(t, 100.0, out[3])
		assert.Equal(t, 100.0, out[4])
	})

	t.Run("all losses pin to zero", func(t *testing.T) {
		out := Rsi([]float64{10, 9, 8, 7, 6}, 3)

		assert.Equal(t, 0.0, out[3])
		assert.Equal(t, 0.0, out[4])
	})

	t.Run("series shorter than period", func(t *testing.T) {
		out := Rsi([]float64{10, 11}, 14)

		for i, v := range out {
			assert.True(t, math.IsNaN(v), "index %d should be undefined", i)
		}
	})

	t.Run("never NaN after warm-up", func(t *testing.T) {
		closes := []float64{5, 5, 5, 5, 5, 5, 5, 5}
		out := Rsi(closes, 3)

		// flat prices: zero gain, zero loss, still saturates instead of 0/0
		for i := 3; i < len(out); i++ {
			assert.False(t, math.IsNaN(out[i]), "index %d should be defined", i)
		}
	})
}
