package strategy

import "fmt"

// Params is the immutable configuration of one strategy instance. Backtest
// and live runs must be given identical values for their signals to be
// comparable.
type Params struct {
	FastSmaPeriod  int     `yaml:"fast_sma_period"`
	SlowSmaPeriod  int     `yaml:"slow_sma_period"`
	TrendSmaPeriod int     `yaml:"trend_sma_period"`
	RsiPeriod      int     `yaml:"rsi_period"`
	RsiOverbought  float64 `yaml:"rsi_overbought"`
	RsiOversold    float64 `yaml:"rsi_oversold"`
}

func DefaultParams() Params {
	return Params{
		FastSmaPeriod:  5,
		SlowSmaPeriod:  10,
		TrendSmaPeriod: 50,
		RsiPeriod:      14,
		RsiOverbought:  70,
		RsiOversold:    30,
	}
}

func (p Params) Validate() error {
	if p.FastSmaPeriod <= 0 || p.SlowSmaPeriod <= 0 || p.TrendSmaPeriod <= 0 || p.RsiPeriod <= 0 {
		return fmt.Errorf("all indicator periods must be positive: %+v", p)
	}

	if p.FastSmaPeriod >= p.SlowSmaPeriod {
		return fmt.Errorf("fast sma period %d must be below slow sma period %d", p.FastSmaPeriod, p.SlowSmaPeriod)
	}

	if p.RsiOverbought <= p.RsiOversold {
		return fmt.Errorf("rsi overbought %.1f must be above rsi oversold %.1f", p.RsiOverbought, p.RsiOversold)
	}

	return nil
}
