package utils

import "time"

// CloseGuardBand keeps evaluations from racing a candle that is right at its
// boundary: within this window of a close, the following boundary is
// targeted instead.
const CloseGuardBand = 5 * time.Second

// NextCandleClose returns the next candle boundary strictly after now for
// the given interval, skipping one interval when now sits inside the guard
// band. Boundaries are aligned to UTC epoch multiples of the interval, the
// same alignment the exchange uses.
func NextCandleClose(now time.Time, interval time.Duration) time.Time {
	next := now.Truncate(interval).Add(interval)
	if next.Sub(now) < CloseGuardBand {
		next = next.Add(interval)
	}

	return next
}
