package models

import "time"

type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// IsClosed reports whether the candle's interval has fully elapsed at now.
// An in-progress candle must never be fed to signal evaluation.
func (c Candle) IsClosed(interval time.Duration, now time.Time) bool {
	return !now.Before(c.OpenTime.Add(interval))
}

// ValidateCandles checks the strictly-increasing open time invariant.
func ValidateCandles(candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			return CandlesOutOfOrderErr
		}
	}

	return nil
}

func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	return closes
}
