package strategy

import (
	"math"

	"github.com/sirupsen/logrus"

	"mtf-trader/src/indicators"
	"mtf-trader/src/models"
)

// Evaluator is the contract both execution drivers call. Evaluate has no side
// effects; position transitions happen only through Apply.
type Evaluator interface {
	ComputeIndicators(primary, secondary []models.Candle) (*indicators.Series, *indicators.Series)
	Evaluate(primary, secondary *indicators.Series, primaryIdx, secondaryIdx int) models.Signal
	Apply(signal models.Signal, price float64)
	Reset()
	Position() models.Position
}

// Diagnoser exposes the intermediate signal queries for market-state logging.
// Implementations declare the capability here instead of callers probing for
// it at runtime.
type Diagnoser interface {
	Crossover(primary *indicators.Series, idx int) models.Crossover
	TrendDirection(secondary *indicators.Series, idx int) models.TrendDirection
}

// MultiTimeframe trades a fast/slow SMA crossover on the primary timeframe,
// confirmed by a trend SMA on the secondary timeframe and an RSI filter.
// The same instance drives both replay and live evaluation.
type MultiTimeframe struct {
	params     Params
	position   models.Position
	entryPrice float64
	log        logrus.FieldLogger
}

func NewMultiTimeframe(params Params, logger logrus.FieldLogger) *MultiTimeframe {
	logger.Infof("strategy initialized: fast sma=%d, slow sma=%d, trend sma=%d, rsi=%d",
		params.FastSmaPeriod, params.SlowSmaPeriod, params.TrendSmaPeriod, params.RsiPeriod)

	return &MultiTimeframe{
		params: params,
		log:    logger,
	}
}

func (s *MultiTimeframe) Params() Params {
	return s.params
}

func (s *MultiTimeframe) Position() models.Position {
	return s.position
}

func (s *MultiTimeframe) EntryPrice() float64 {
	return s.entryPrice
}

// ComputeIndicators annotates both candle sequences with this strategy's
// indicator columns.
func (s *MultiTimeframe) ComputeIndicators(primary, secondary []models.Candle) (*indicators.Series, *indicators.Series) {
	p := indicators.NewPrimarySeries(primary, s.params.FastSmaPeriod, s.params.SlowSmaPeriod, s.params.RsiPeriod)
	t := indicators.NewTrendSeries(secondary, s.params.TrendSmaPeriod)
	return p, t
}

// TrendDirection compares the close to the trend SMA on the secondary
// timeframe. Undefined while the trend SMA is warming up, or on an exact tie.
func (s *MultiTimeframe) TrendDirection(secondary *indicators.Series, idx int) models.TrendDirection {
	if idx < 0 || idx >= secondary.Len() {
		return models.TrendUndefined
	}

	if !indicators.Defined(secondary.TrendSma, idx) {
		return models.TrendUndefined
	}

	closePrice := secondary.Candles[idx].Close
	trendSma := secondary.TrendSma[idx]

	if closePrice > trendSma {
		return models.TrendUp
	}

	if closePrice < trendSma {
		return models.TrendDown
	}

	return models.TrendUndefined
}

// Crossover detects the one-bar event where the fast SMA crosses the slow
// SMA between idx-1 and idx. Undefined previous-bar values make every
// comparison false, which reads as no crossover.
func (s *MultiTimeframe) Crossover(primary *indicators.Series, idx int) models.Crossover {
	if idx < 1 || idx >= primary.Len() {
		return models.CrossoverNone
	}

	if !indicators.Defined(primary.FastSma, idx) || !indicators.Defined(primary.SlowSma, idx) {
		return models.CrossoverNone
	}

	fastCur := primary.FastSma[idx]
	slowCur := primary.SlowSma[idx]
	fastPrev := primary.FastSma[idx-1]
	slowPrev := primary.SlowSma[idx-1]

	if fastPrev <= slowPrev && fastCur > slowCur {
		s.log.Debugf("bullish crossover at index %d", idx)
		return models.CrossoverBullish
	}

	if fastPrev >= slowPrev && fastCur < slowCur {
		s.log.Debugf("bearish crossover at index %d", idx)
		return models.CrossoverBearish
	}

	return models.CrossoverNone
}

// Evaluate decides BUY/SELL/HOLD for already-closed bars at the given
// indices. Entry takes a bullish crossover OR an uptrend with RSI below the
// overbought threshold; exit takes a bearish crossover or an overbought RSI.
func (s *MultiTimeframe) Evaluate(primary, secondary *indicators.Series, primaryIdx, secondaryIdx int) models.Signal {
	if primaryIdx < s.params.SlowSmaPeriod || secondaryIdx < s.params.TrendSmaPeriod {
		return models.SignalHold
	}

	if primaryIdx >= primary.Len() || secondaryIdx >= secondary.Len() {
		return models.SignalHold
	}

	price := primary.Candles[primaryIdx].Close
	rsi := math.NaN()
	if indicators.Defined(primary.Rsi, primaryIdx) {
		rsi = primary.Rsi[primaryIdx]
	}

	crossover := s.Crossover(primary, primaryIdx)
	trend := s.TrendDirection(secondary, secondaryIdx)

	s.log.Debugf("signal check - price: %.2f, rsi: %.2f, crossover: %v, trend: %v, position: %v",
		price, rsi, crossover, trend, s.position)

	if s.position == models.PositionFlat {
		if crossover == models.CrossoverBullish || (trend == models.TrendUp && rsi < s.params.RsiOverbought) {
			s.log.Infof("BUY signal at %.2f", price)
			return models.SignalBuy
		}
	} else if s.position == models.PositionLong {
		if crossover == models.CrossoverBearish || rsi > s.params.RsiOverbought {
			s.log.Infof("SELL signal at %.2f", price)
			return models.SignalSell
		}
	}

	return models.SignalHold
}

// Apply transitions the position state for an executed signal. HOLD is a
// no-op.
func (s *MultiTimeframe) Apply(signal models.Signal, price float64) {
	switch signal {
	case models.SignalBuy:
		s.position = models.PositionLong
		s.entryPrice = price
		s.log.Infof("position: LONG at %.2f", price)
	case models.SignalSell:
		s.position = models.PositionFlat
		s.entryPrice = 0
		s.log.Infof("position closed at %.2f", price)
	}
}

// Reset returns the state machine to FLAT at the start of a session.
func (s *MultiTimeframe) Reset() {
	s.position = models.PositionFlat
	s.entryPrice = 0
	s.log.Info("strategy reset")
}
