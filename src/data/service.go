package data

import (
	"context"
	"time"

	"mtf-trader/src/models"
)

// MarketDataService returns closed-candle history for one symbol/interval.
// Providers cap the bars per call; callers paginate past the cap themselves.
type MarketDataService interface {
	GetCandles(ctx context.Context, symbol string, interval models.Timeframe, start, end *time.Time, limit int) ([]models.Candle, error)
}

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

type OrderRequest struct {
	Symbol        string
	Side          models.TradeSide
	Type          OrderType
	Quantity      float64
	Price         *float64
	ClientOrderID string
}

func (r OrderRequest) Validate() error {
	if r.Type == OrderTypeLimit && r.Price == nil {
		return models.PriceRequiredErr
	}

	return nil
}

type OrderResult struct {
	OrderID string
	Status  string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

type AccountService interface {
	GetBalance(ctx context.Context, asset string) (float64, error)
}
