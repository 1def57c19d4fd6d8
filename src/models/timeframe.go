package models

import (
	"fmt"
	"strconv"
	"time"
)

// Timeframe is a candle interval string as the exchange spells it, e.g. "1m", "3m", "1h", "1d".
type Timeframe string

func (tf Timeframe) Duration() (time.Duration, error) {
	s := string(tf)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", UnknownTimeframeErr, s)
	}

	count, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || count <= 0 {
		return 0, fmt.Errorf("%w: %q", UnknownTimeframeErr, s)
	}

	switch s[len(s)-1] {
	case 'm':
		return time.Duration(count) * time.Minute, nil
	case 'h':
		return time.Duration(count) * time.Hour, nil
	case 'd':
		return time.Duration(count) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %q", UnknownTimeframeErr, s)
	}
}

func (tf Timeframe) Validate() error {
	_, err := tf.Duration()
	return err
}

func (tf Timeframe) String() string {
	return string(tf)
}
