package data

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"mtf-trader/src/models"
)

const (
	BinanceTestnetURL = "https://testnet.binance.vision/api"
	BinanceMainnetURL = "https://api.binance.com/api"
)

// BinanceClient wraps the Binance spot REST API. Market data endpoints are
// public; account and order endpoints require an HMAC-SHA256 signed query.
type BinanceClient struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewBinanceClient(apiKey, apiSecret string, testnet bool, logger logrus.FieldLogger) *BinanceClient {
	baseURL := BinanceMainnetURL
	if testnet {
		baseURL = BinanceTestnetURL
	}

	logger.Infof("initialized binance client (testnet=%v)", testnet)

	return &BinanceClient{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger,
	}
}

func (c *BinanceClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *BinanceClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: request failed: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("do: failed to read response body: %w", err)
	}

	if res.StatusCode >= 400 {
		var errDTO struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}

		if jsonErr := json.Unmarshal(body, &errDTO); jsonErr == nil && errDTO.Msg != "" {
			return nil, fmt.Errorf("do: binance error %d: %s", errDTO.Code, errDTO.Msg)
		}

		return nil, fmt.Errorf("do: unexpected status %d: %s", res.StatusCode, string(body))
	}

	return body, nil
}

func (c *BinanceClient) get(ctx context.Context, endpoint string, params url.Values, signed bool) ([]byte, error) {
	query := params.Encode()
	if signed {
		query = query + "&signature=" + c.sign(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("get: failed to build request: %w", err)
	}

	return c.do(req)
}

// GetServerTime returns the exchange clock in unix milliseconds.
func (c *BinanceClient) GetServerTime(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, "/v3/time", url.Values{}, false)
	if err != nil {
		return 0, fmt.Errorf("GetServerTime: %w", err)
	}

	var dto struct {
		ServerTime int64 `json:"serverTime"`
	}

	if err := json.Unmarshal(body, &dto); err != nil {
		return 0, fmt.Errorf("GetServerTime: failed to parse response: %w", err)
	}

	return dto.ServerTime, nil
}

// GetCandles fetches klines for one symbol/interval. The exchange caps limit
// at 1000 bars per call.
func (c *BinanceClient) GetCandles(ctx context.Context, symbol string, interval models.Timeframe, start, end *time.Time, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval.String())
	params.Set("limit", strconv.Itoa(limit))

	if start != nil {
		params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	}

	if end != nil {
		params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	}

	c.log.Debugf("fetching klines: %s %s limit=%d", symbol, interval, limit)

	body, err := c.get(ctx, "/v3/klines", params, false)
	if err != nil {
		return nil, fmt.Errorf("GetCandles: %w", err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("GetCandles: failed to parse klines: %w", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("GetCandles: %w", err)
		}

		candles = append(candles, candle)
	}

	c.log.Infof("fetched %d candles for %s %s", len(candles), symbol, interval)
	return candles, nil
}

// parseKline decodes one exchange kline row: open time in unix millis
// followed by OHLCV as quoted decimal strings.
func parseKline(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("parseKline: malformed kline row with %d fields", len(row))
	}

	var openTimeMs int64
	if err := json.Unmarshal(row[0], &openTimeMs); err != nil {
		return models.Candle{}, fmt.Errorf("parseKline: invalid open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return models.Candle{}, fmt.Errorf("parseKline: invalid price field %d: %w", i+1, err)
		}

		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parseKline: invalid price value %q: %w", s, err)
		}

		fields[i] = v
	}

	return models.Candle{
		OpenTime: time.UnixMilli(openTimeMs).UTC(),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}, nil
}

// PlaceOrder submits a signed order. Limit orders without a price are
// rejected before anything is sent.
func (c *BinanceClient) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if err := req.Validate(); err != nil {
		return OrderResult{}, fmt.Errorf("PlaceOrder: %w", err)
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", string(req.Type))
	params.Set("quantity", strconv.FormatFloat(req.Quantity, 'f', -1, 64))
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}

	if req.Type == OrderTypeLimit {
		params.Set("price", strconv.FormatFloat(*req.Price, 'f', -1, 64))
		params.Set("timeInForce", "GTC")
	}

	query := params.Encode()
	query = query + "&signature=" + c.sign(query)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/order?"+query, nil)
	if err != nil {
		return OrderResult{}, fmt.Errorf("PlaceOrder: failed to build request: %w", err)
	}

	body, err := c.do(httpReq)
	if err != nil {
		return OrderResult{}, fmt.Errorf("PlaceOrder: %w", err)
	}

	var dto struct {
		OrderID int64  `json:"orderId"`
		Status  string `json:"status"`
	}

	if err := json.Unmarshal(body, &dto); err != nil {
		return OrderResult{}, fmt.Errorf("PlaceOrder: failed to parse response: %w", err)
	}

	c.log.Infof("placed %s %s order for %s: id=%d status=%s", req.Side, req.Type, req.Symbol, dto.OrderID, dto.Status)

	return OrderResult{
		OrderID: strconv.FormatInt(dto.OrderID, 10),
		Status:  dto.Status,
	}, nil
}

// GetBalance returns the free balance of one asset on the account.
func (c *BinanceClient) GetBalance(ctx context.Context, asset string) (float64, error) {
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	body, err := c.get(ctx, "/v3/account", params, true)
	if err != nil {
		return 0, fmt.Errorf("GetBalance: %w", err)
	}

	var dto struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}

	if err := json.Unmarshal(body, &dto); err != nil {
		return 0, fmt.Errorf("GetBalance: failed to parse response: %w", err)
	}

	for _, b := range dto.Balances {
		if b.Asset == asset {
			free, err := strconv.ParseFloat(b.Free, 64)
			if err != nil {
				return 0, fmt.Errorf("GetBalance: invalid balance %q: %w", b.Free, err)
			}

			return free, nil
		}
	}

	return 0, nil
}
