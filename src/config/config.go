package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mtf-trader/src/models"
	"mtf-trader/src/strategy"
)

type BacktestConfig struct {
	StartDate      string  `yaml:"start_date"`
	EndDate        string  `yaml:"end_date"`
	InitialCapital float64 `yaml:"initial_capital"`
	Commission     float64 `yaml:"commission"`
	UseMainnetData bool    `yaml:"use_mainnet_data"`
}

type OutputConfig struct {
	BacktestTradesFile string `yaml:"backtest_trades_file"`
	LiveTradesFile     string `yaml:"live_trades_file"`
}

// Config is the full configuration surface of one run. Strategy parameters
// must be identical between backtest and live sessions for their trade logs
// to be comparable, which is why both read the same file.
type Config struct {
	Symbol             string           `yaml:"symbol"`
	PrimaryTimeframe   models.Timeframe `yaml:"primary_timeframe"`
	SecondaryTimeframe models.Timeframe `yaml:"secondary_timeframe"`
	TradeQuantity      float64          `yaml:"trade_quantity"`
	Strategy           strategy.Params  `yaml:"strategy"`
	Backtest           BacktestConfig   `yaml:"backtest"`
	MatchTolerance     string           `yaml:"match_tolerance"`
	Output             OutputConfig     `yaml:"output"`
}

func Default() *Config {
	return &Config{
		Symbol:             "BTCUSDT",
		PrimaryTimeframe:   "1m",
		SecondaryTimeframe: "3m",
		TradeQuantity:      0.001,
		Strategy:           strategy.DefaultParams(),
		Backtest: BacktestConfig{
			InitialCapital: 10000,
			UseMainnetData: true,
		},
		Output: OutputConfig{
			BacktestTradesFile: "output/backtest_trades.csv",
			LiveTradesFile:     "output/live_trades.csv",
		},
	}
}

// Load reads the YAML config file over the defaults. Malformed configuration
// is fatal at startup, before any trading loop is entered.
func Load(path string) (*Config, error) {
	cfg := Default()

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(body, cfg); err != nil {
		return nil, fmt.Errorf("Load: failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must be set")
	}

	if err := c.PrimaryTimeframe.Validate(); err != nil {
		return fmt.Errorf("primary timeframe: %w", err)
	}

	if err := c.SecondaryTimeframe.Validate(); err != nil {
		return fmt.Errorf("secondary timeframe: %w", err)
	}

	if c.TradeQuantity <= 0 {
		return fmt.Errorf("trade_quantity must be positive, got %v", c.TradeQuantity)
	}

	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	if c.Backtest.StartDate != "" || c.Backtest.EndDate != "" {
		start, end, err := c.BacktestRange()
		if err != nil {
			return err
		}

		if !start.Before(end) {
			return fmt.Errorf("backtest start_date %s must be before end_date %s", c.Backtest.StartDate, c.Backtest.EndDate)
		}
	}

	if c.MatchTolerance != "" {
		if _, err := time.ParseDuration(c.MatchTolerance); err != nil {
			return fmt.Errorf("match_tolerance: %w", err)
		}
	}

	return nil
}

func (c *Config) BacktestRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, c.Backtest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("backtest start_date: %w", err)
	}

	end, err := time.Parse(time.DateOnly, c.Backtest.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("backtest end_date: %w", err)
	}

	return start.UTC(), end.UTC(), nil
}

// MatchWindow returns the configured matching tolerance, defaulting to 15x
// the primary candle duration when unset.
func (c *Config) MatchWindow() (time.Duration, error) {
	if c.MatchTolerance != "" {
		return time.ParseDuration(c.MatchTolerance)
	}

	primaryDur, err := c.PrimaryTimeframe.Duration()
	if err != nil {
		return 0, err
	}

	return 15 * primaryDur, nil
}

// Credentials come from the environment, never the config file.
func Credentials() (apiKey, apiSecret string) {
	return os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")
}
