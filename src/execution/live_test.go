package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtf-trader/src/data"
	"mtf-trader/src/models"
	"mtf-trader/src/strategy"
)

// fakeMarketData serves a fixed candle window per interval, the shape the
// exchange returns for a latest-N klines request.
type fakeMarketData struct {
	candles map[models.Timeframe][]models.Candle
}

func (f *fakeMarketData) GetCandles(_ context.Context, _ string, interval models.Timeframe, _, _ *time.Time, _ int) ([]models.Candle, error) {
	return f.candles[interval], nil
}

type fakeOrderService struct {
	requests []data.OrderRequest
	result   data.OrderResult
	err      error
	onCall   func()
}

func (f *fakeOrderService) PlaceOrder(_ context.Context, req data.OrderRequest) (data.OrderResult, error) {
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall()
	}

	if f.err != nil {
		return data.OrderResult{}, f.err
	}

	return f.result, nil
}

// liveFixture: a dip and recovery where the last closed bar produces a
// bullish crossover in an uptrend with RSI below the overbought threshold.
func liveFixture() (*fakeMarketData, *strategy.MultiTimeframe, time.Time) {
	closes := []float64{10, 9.8, 10.0, 9.9, 9.85, 10.05}

	feed := &fakeMarketData{candles: map[models.Timeframe][]models.Candle{
		"1m": candlesFromCloses(closes, time.Minute),
		"3m": candlesFromCloses(closes, 3*time.Minute),
	}}

	params := strategy.Params{
		FastSmaPeriod:  2,
		SlowSmaPeriod:  3,
		TrendSmaPeriod: 2,
		RsiPeriod:      3,
		RsiOverbought:  70,
		RsiOversold:    30,
	}
	strat := strategy.NewMultiTimeframe(params, newTestLogger())

	// past the close of the last 3m candle, so no tail bar gets dropped
	now := time.Date(2024, 11, 1, 0, 18, 0, 0, time.UTC)

	return feed, strat, now
}

func newLiveEngine(t *testing.T, feed *fakeMarketData, orders data.OrderService, strat *strategy.MultiTimeframe, now time.Time) *LiveEngine {
	t.Helper()

	handler := data.NewHandler(feed, "BTCUSDT", newTestLogger())
	engine, err := NewLiveEngine(handler, orders, strat, "BTCUSDT", "1m", "3m", 0.001, newTestLogger())
	require.NoError(t, err)

	engine.now = func() time.Time { return now }
	return engine
}

func TestLiveEngineRun(t *testing.T) {
	t.Run("executes a buy and stops at max trades", func(t *testing.T) {
		feed, strat, now := liveFixture()
		orders := &fakeOrderService{result: data.OrderResult{OrderID: "123", Status: "FILLED"}}

		engine := newLiveEngine(t, feed, orders, strat, now)
		require.NoError(t, engine.Run(context.Background(), 1))

		require.Len(t, orders.requests, 1)
		req := orders.requests[0]
		assert.Equal(t, "BTCUSDT", req.Symbol)
		assert.Equal(t, models.SideBuy, req.Side)
		assert.Equal(t, data.OrderTypeMarket, req.Type)
		assert.Equal(t, 0.001, req.Quantity)
		assert.NotEmpty(t, req.ClientOrderID)

		records := engine.Ledger().Records()
		require.Len(t, records, 1)
		assert.Equal(t, models.SideBuy, records[0].Side)
		assert.Equal(t, "123", records[0].OrderID)
		assert.Equal(t, "FILLED", records[0].Status)
		assert.Equal(t, 10.05, records[0].EntryPrice)

		// the record carries the closed bar's open time, not the wall clock
		assert.Equal(t, time.Date(2024, 11, 1, 0, 5, 0, 0, time.UTC), records[0].Timestamp)

		assert.Equal(t, models.PositionLong, strat.Position())
	})

	t.Run("canceled context exits before trading", func(t *testing.T) {
		feed, strat, now := liveFixture()
		orders := &fakeOrderService{result: data.OrderResult{OrderID: "123", Status: "FILLED"}}

		engine := newLiveEngine(t, feed, orders, strat, now)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, engine.Run(ctx, 1))
		assert.Empty(t, orders.requests)
		assert.Equal(t, 0, engine.Ledger().Len())
	})

	t.Run("order failure leaves the ledger untouched", func(t *testing.T) {
		feed, strat, now := liveFixture()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		orders := &fakeOrderService{err: errors.New("insufficient balance"), onCall: cancel}

		engine := newLiveEngine(t, feed, orders, strat, now)
		require.NoError(t, engine.Run(ctx, 1))

		require.Len(t, orders.requests, 1)
		assert.Equal(t, 0, engine.Ledger().Len())
		assert.Equal(t, models.PositionFlat, strat.Position())
	})
}

func TestNewLiveEngineValidation(t *testing.T) {
	feed, strat, _ := liveFixture()
	handler := data.NewHandler(feed, "BTCUSDT", newTestLogger())
	orders := &fakeOrderService{}

	t.Run("bad primary timeframe", func(t *testing.T) {
		_, err := NewLiveEngine(handler, orders, strat, "BTCUSDT", "1x", "3m", 0.001, newTestLogger())
		assert.ErrorIs(t, err, models.UnknownTimeframeErr)
	})

	t.Run("bad secondary timeframe", func(t *testing.T) {
		_, err := NewLiveEngine(handler, orders, strat, "BTCUSDT", "1m", "", 0.001, newTestLogger())
		assert.ErrorIs(t, err, models.UnknownTimeframeErr)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := NewLiveEngine(handler, orders, strat, "BTCUSDT", "1m", "3m", 0, newTestLogger())
		assert.Error(t, err)
	})
}
