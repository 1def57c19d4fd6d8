package execution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"mtf-trader/src/data"
	"mtf-trader/src/models"
	"mtf-trader/src/strategy"
)

// BacktestEngine replays historical bars through the strategy in time order
// and fills non-HOLD signals at that bar's close. The exact same strategy
// instance semantics drive live trading, which is what makes the two trade
// logs comparable.
type BacktestEngine struct {
	strat          strategy.Evaluator
	symbol         string
	quantity       float64
	initialCapital float64
	commission     float64
	ledger         *models.Ledger
	log            logrus.FieldLogger
}

func NewBacktestEngine(strat strategy.Evaluator, symbol string, quantity, initialCapital, commission float64, logger logrus.FieldLogger) *BacktestEngine {
	logger.Infof("backtest engine initialized with capital=%.2f commission=%.4f", initialCapital, commission)

	return &BacktestEngine{
		strat:          strat,
		symbol:         symbol,
		quantity:       quantity,
		initialCapital: initialCapital,
		commission:     commission,
		log:            logger,
	}
}

// SeedCapitalFromAccount replaces the configured capital with the account's
// free balance when credentials are present and the balance is above a
// sanity floor. Fetch failures fall back to the configured default.
func (e *BacktestEngine) SeedCapitalFromAccount(ctx context.Context, acct data.AccountService, asset string) {
	balance, err := acct.GetBalance(ctx, asset)
	if err != nil {
		e.log.Warnf("could not fetch %s balance: %v, using default capital %.2f", asset, err, e.initialCapital)
		return
	}

	if balance <= 10 {
		e.log.Infof("%s balance %.2f below floor, using default capital %.2f", asset, balance, e.initialCapital)
		return
	}

	e.initialCapital = balance
	e.log.Infof("using account %s balance: %.2f", asset, balance)
}

func (e *BacktestEngine) Ledger() *models.Ledger {
	return e.ledger
}

func (e *BacktestEngine) InitialCapital() float64 {
	return e.initialCapital
}

// Run replays the primary bars against the secondary trend series and
// returns the resulting trade ledger. For each primary bar the latest
// secondary bar at or before it is used; bars with no such secondary bar are
// skipped without evaluating.
func (e *BacktestEngine) Run(primary, secondary []models.Candle) (*models.Ledger, error) {
	if err := models.ValidateCandles(primary); err != nil {
		return nil, fmt.Errorf("Run: primary series: %w", err)
	}

	if err := models.ValidateCandles(secondary); err != nil {
		return nil, fmt.Errorf("Run: secondary series: %w", err)
	}

	e.log.Info("starting backtest")

	e.strat.Reset()
	e.ledger = models.NewLedger()

	primarySeries, secondarySeries := e.strat.ComputeIndicators(primary, secondary)

	for i := range primary {
		secondaryIdx, ok := latestAtOrBefore(secondary, primary[i].OpenTime)
		if !ok {
			continue
		}

		signal := e.strat.Evaluate(primarySeries, secondarySeries, i, secondaryIdx)
		if signal == models.SignalHold {
			continue
		}

		closePrice := primary[i].Close

		switch signal {
		case models.SignalBuy:
			if e.strat.Position() != models.PositionFlat {
				continue
			}

			if _, err := e.ledger.RecordEntry(primary[i].OpenTime, e.symbol, closePrice, e.quantity, "", "SIMULATED"); err != nil {
				return nil, fmt.Errorf("Run: %w", err)
			}

			e.strat.Apply(signal, closePrice)
			e.log.Infof("BUY executed at %.2f on %s", closePrice, primary[i].OpenTime)

		case models.SignalSell:
			if e.strat.Position() != models.PositionLong {
				continue
			}

			if _, err := e.ledger.RecordExit(primary[i].OpenTime, closePrice, "", "SIMULATED"); err != nil {
				return nil, fmt.Errorf("Run: %w", err)
			}

			e.strat.Apply(signal, closePrice)
			e.log.Infof("SELL executed at %.2f on %s", closePrice, primary[i].OpenTime)
		}
	}

	roundTrips := len(e.ledger.RoundTrips())
	e.log.Infof("backtest completed: %d round trips, %d trade records", roundTrips, e.ledger.Len())

	return e.ledger, nil
}

// latestAtOrBefore finds the index of the last candle whose open time is at
// or before t, over a series sorted by open time.
func latestAtOrBefore(candles []models.Candle, t time.Time) (int, bool) {
	n := sort.Search(len(candles), func(i int) bool {
		return candles[i].OpenTime.After(t)
	})

	if n == 0 {
		return 0, false
	}

	return n - 1, true
}
