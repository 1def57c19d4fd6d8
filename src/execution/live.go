package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mtf-trader/src/data"
	"mtf-trader/src/indicators"
	"mtf-trader/src/models"
	"mtf-trader/src/strategy"
	"mtf-trader/src/utils"
)

// LiveStrategy is what the live driver needs from a strategy: signal
// evaluation plus the diagnostic queries used for market-state logging.
type LiveStrategy interface {
	strategy.Evaluator
	strategy.Diagnoser
}

// LiveEngine polls the market once per primary-candle close, evaluates the
// strategy against the last closed bar of each timeframe, and submits market
// orders for non-HOLD signals. One logical goroutine owns the loop and the
// ledger; recoverable failures abort only the current iteration.
type LiveEngine struct {
	handler     *data.Handler
	orders      data.OrderService
	strat       LiveStrategy
	symbol      string
	primaryTf   models.Timeframe
	secondaryTf models.Timeframe
	primaryDur  time.Duration
	quantity    float64
	fetchLimit  int
	ledger      *models.Ledger
	log         logrus.FieldLogger

	// overridable for tests
	now func() time.Time
}

func NewLiveEngine(handler *data.Handler, orders data.OrderService, strat LiveStrategy, symbol string, primaryTf, secondaryTf models.Timeframe, quantity float64, logger logrus.FieldLogger) (*LiveEngine, error) {
	primaryDur, err := primaryTf.Duration()
	if err != nil {
		return nil, fmt.Errorf("NewLiveEngine: %w", err)
	}

	if err := secondaryTf.Validate(); err != nil {
		return nil, fmt.Errorf("NewLiveEngine: %w", err)
	}

	if quantity <= 0 {
		return nil, fmt.Errorf("NewLiveEngine: quantity must be positive, got %v", quantity)
	}

	logger.Infof("live engine initialized for %s", symbol)
	logger.Infof("primary tf: %s, secondary tf: %s, check interval: %s", primaryTf, secondaryTf, primaryDur)

	return &LiveEngine{
		handler:     handler,
		orders:      orders,
		strat:       strat,
		symbol:      symbol,
		primaryTf:   primaryTf,
		secondaryTf: secondaryTf,
		primaryDur:  primaryDur,
		quantity:    quantity,
		fetchLimit:  100,
		ledger:      models.NewLedger(),
		log:         logger,
	}, nil
}

func (e *LiveEngine) Ledger() *models.Ledger {
	return e.ledger
}

// Run drives the polling loop until ctx is canceled or maxTrades completed
// round trips (counted by BUY executions) have been opened. The first
// iteration evaluates immediately; every later iteration sleeps until the
// next primary-candle close. An order in flight finishes before the loop
// observes cancellation.
func (e *LiveEngine) Run(ctx context.Context, maxTrades int) error {
	e.log.Info("starting candle-close-aligned live trading")

	e.strat.Reset()
	e.ledger = models.NewLedger()

	tradeCount := 0
	iteration := 0

	for {
		if ctx.Err() != nil {
			e.log.Info("stop requested, exiting live loop")
			break
		}

		if maxTrades > 0 && tradeCount >= maxTrades {
			e.log.Infof("reached max trades limit: %d", maxTrades)
			break
		}

		iteration++

		if iteration > 1 {
			if err := e.waitForCandleClose(ctx); err != nil {
				e.log.Info("stop requested during wait, exiting live loop")
				break
			}
		}

		e.log.Infof("--- iteration %d at candle close ---", iteration)

		if err := e.step(ctx, &tradeCount); err != nil {
			e.log.Errorf("iteration %d failed: %v", iteration, err)
			e.log.Info("continuing to next iteration")
		}
	}

	e.log.Infof("live trading stopped, completed round trips opened: %d", tradeCount)
	e.log.Infof("trade records in memory: %d", e.ledger.Len())

	return nil
}

func (e *LiveEngine) waitForCandleClose(ctx context.Context) error {
	now := e.clock()
	next := utils.NextCandleClose(now, e.primaryDur)

	e.log.Infof("current time: %s utc", now.UTC().Format(time.TimeOnly))
	e.log.Infof("next candle close: %s utc, waiting %s", next.UTC().Format(time.TimeOnly), next.Sub(now).Round(time.Second))

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// step runs one evaluation: fetch both windows, evaluate the last closed
// bars, execute a non-HOLD signal. Any failure aborts only this iteration;
// the ledger and position state stay as they were before the failing call.
func (e *LiveEngine) step(ctx context.Context, tradeCount *int) error {
	now := e.clock()

	primary, err := e.handler.FetchLatestClosed(ctx, e.primaryTf, e.fetchLimit, now)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	secondary, err := e.handler.FetchLatestClosed(ctx, e.secondaryTf, e.fetchLimit, now)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	if len(primary) == 0 || len(secondary) == 0 {
		e.log.Warn("empty data received, skipping this iteration")
		return nil
	}

	primarySeries, secondarySeries := e.strat.ComputeIndicators(primary, secondary)

	primaryIdx := len(primary) - 1
	secondaryIdx := len(secondary) - 1

	e.logMarketState(primarySeries, secondarySeries, primaryIdx, secondaryIdx)

	signal := e.strat.Evaluate(primarySeries, secondarySeries, primaryIdx, secondaryIdx)
	if signal == models.SignalHold {
		if e.strat.Position() == models.PositionFlat {
			e.log.Debug("holding - waiting for BUY signal conditions")
		} else {
			e.log.Debug("holding - in position, waiting for SELL signal")
		}

		return nil
	}

	return e.executeTrade(ctx, signal, primary[primaryIdx], tradeCount)
}

func (e *LiveEngine) logMarketState(primary, secondary *indicators.Series, primaryIdx, secondaryIdx int) {
	crossover := e.strat.Crossover(primary, primaryIdx)
	trend := e.strat.TrendDirection(secondary, secondaryIdx)

	e.log.WithFields(logrus.Fields{
		"price":     fmt.Sprintf("%.2f", primary.Candles[primaryIdx].Close),
		"fastSma":   formatIndicator(primary.FastSma, primaryIdx),
		"slowSma":   formatIndicator(primary.SlowSma, primaryIdx),
		"rsi":       formatIndicator(primary.Rsi, primaryIdx),
		"trend":     trend.String(),
		"crossover": crossover.String(),
		"position":  e.strat.Position().String(),
	}).Info("market check")
}

func formatIndicator(column []float64, idx int) string {
	if !indicators.Defined(column, idx) {
		return "N/A"
	}

	return fmt.Sprintf("%.2f", column[idx])
}

// executeTrade submits a market order and records it. The record carries the
// closed bar's open time so that live and replay logs line up on candle
// boundaries.
func (e *LiveEngine) executeTrade(ctx context.Context, signal models.Signal, bar models.Candle, tradeCount *int) error {
	price := bar.Close
	clientOrderID := uuid.NewString()

	side := models.SideBuy
	if signal == models.SignalSell {
		side = models.SideSell
	}

	// The adapter, not the state machine, rejects out-of-turn executions.
	if side == models.SideBuy && e.strat.Position() != models.PositionFlat {
		e.log.Warnf("ignoring BUY signal while %v", e.strat.Position())
		return nil
	}

	if side == models.SideSell && e.strat.Position() != models.PositionLong {
		e.log.Warnf("ignoring SELL signal while %v", e.strat.Position())
		return nil
	}

	e.log.Infof("placing %s order: %v %s @ market price ~%.2f", side, e.quantity, e.symbol, price)

	result, err := e.orders.PlaceOrder(ctx, data.OrderRequest{
		Symbol:        e.symbol,
		Side:          side,
		Type:          data.OrderTypeMarket,
		Quantity:      e.quantity,
		ClientOrderID: clientOrderID,
	})
	if err != nil {
		return fmt.Errorf("executeTrade: %s order failed: %w", side, err)
	}

	switch side {
	case models.SideBuy:
		if _, err := e.ledger.RecordEntry(bar.OpenTime, e.symbol, price, e.quantity, result.OrderID, result.Status); err != nil {
			return fmt.Errorf("executeTrade: %w", err)
		}

		e.strat.Apply(signal, price)
		*tradeCount++
		e.log.Infof("BUY order executed: id=%s status=%s, round trips opened: %d", result.OrderID, result.Status, *tradeCount)

	case models.SideSell:
		record, err := e.ledger.RecordExit(bar.OpenTime, price, result.OrderID, result.Status)
		if err != nil {
			return fmt.Errorf("executeTrade: %w", err)
		}

		e.strat.Apply(signal, price)
		e.log.Infof("SELL order executed: id=%s status=%s pnl=%.2f (%.2f%%)", result.OrderID, result.Status, *record.Pnl, *record.ReturnPct)
	}

	return nil
}

func (e *LiveEngine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}

	return time.Now().UTC()
}
