package data

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mtf-trader/src/models"
)

// The exchange caps each klines call at 1000 bars.
const maxBarsPerRequest = 1000

// Handler fetches and aligns market data for one symbol across timeframes.
type Handler struct {
	svc    MarketDataService
	symbol string
	log    logrus.FieldLogger
}

func NewHandler(svc MarketDataService, symbol string, logger logrus.FieldLogger) *Handler {
	logger.Infof("initialized data handler for %s", symbol)

	return &Handler{
		svc:    svc,
		symbol: symbol,
		log:    logger,
	}
}

// FetchHistorical pulls a contiguous candle range, paginating by advancing
// the start past the last returned bar's open time until the range is
// exhausted or the provider returns empty. Duplicate timestamps between
// batches are dropped.
func (h *Handler) FetchHistorical(ctx context.Context, interval models.Timeframe, start, end time.Time) ([]models.Candle, error) {
	h.log.Infof("fetching historical data: %s %s from %s to %s",
		h.symbol, interval, start.Format(time.DateOnly), end.Format(time.DateOnly))

	var all []models.Candle
	cursor := start

	for cursor.Before(end) {
		batch, err := h.svc.GetCandles(ctx, h.symbol, interval, &cursor, &end, maxBarsPerRequest)
		if err != nil {
			return nil, fmt.Errorf("FetchHistorical: %w", err)
		}

		if len(batch) == 0 {
			h.log.Warnf("no more data available from %s", cursor)
			break
		}

		for _, c := range batch {
			if len(all) > 0 && !c.OpenTime.After(all[len(all)-1].OpenTime) {
				continue
			}

			all = append(all, c)
		}

		cursor = batch[len(batch)-1].OpenTime.Add(time.Millisecond)
		h.log.Debugf("fetched batch of %d candles", len(batch))
	}

	if err := models.ValidateCandles(all); err != nil {
		return nil, fmt.Errorf("FetchHistorical: %w", err)
	}

	h.log.Infof("total candles fetched: %d", len(all))
	return all, nil
}

// FetchLatestClosed returns the most recent candles for live evaluation,
// with any still-open candle at the tail dropped. Feeding an in-progress
// candle to the strategy would make live and replay diverge.
func (h *Handler) FetchLatestClosed(ctx context.Context, interval models.Timeframe, limit int, now time.Time) ([]models.Candle, error) {
	duration, err := interval.Duration()
	if err != nil {
		return nil, fmt.Errorf("FetchLatestClosed: %w", err)
	}

	candles, err := h.svc.GetCandles(ctx, h.symbol, interval, nil, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("FetchLatestClosed: %w", err)
	}

	for len(candles) > 0 && !candles[len(candles)-1].IsClosed(duration, now) {
		candles = candles[:len(candles)-1]
	}

	return candles, nil
}

// FetchHistoricalMultiTimeframe fetches both strategy timeframes over the
// same range.
func (h *Handler) FetchHistoricalMultiTimeframe(ctx context.Context, primary, secondary models.Timeframe, start, end time.Time) ([]models.Candle, []models.Candle, error) {
	h.log.Infof("fetching multi-timeframe data: %s and %s", primary, secondary)

	primaryCandles, err := h.FetchHistorical(ctx, primary, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("FetchHistoricalMultiTimeframe: primary %s: %w", primary, err)
	}

	secondaryCandles, err := h.FetchHistorical(ctx, secondary, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("FetchHistoricalMultiTimeframe: secondary %s: %w", secondary, err)
	}

	return primaryCandles, secondaryCandles, nil
}
