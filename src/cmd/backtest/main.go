package main

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mtf-trader/src/config"
	"mtf-trader/src/data"
	"mtf-trader/src/execution"
	"mtf-trader/src/models"
	"mtf-trader/src/strategy"
	"mtf-trader/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replays historical candles through the strategy and writes the simulated trade log.",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config flag: %v", err)
		}

		if err := Run(configPath); err != nil {
			log.Fatalf("backtest failed: %v", err)
		}
	},
}

func Run(configPath string) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := log.New()

	apiKey, apiSecret := config.Credentials()
	client := data.NewBinanceClient(apiKey, apiSecret, !cfg.Backtest.UseMainnetData, logger)
	handler := data.NewHandler(client, cfg.Symbol, logger)

	strat := strategy.NewMultiTimeframe(cfg.Strategy, logger)
	engine := execution.NewBacktestEngine(strat, cfg.Symbol, cfg.TradeQuantity, cfg.Backtest.InitialCapital, cfg.Backtest.Commission, logger)

	ctx := context.Background()

	if apiKey != "" {
		engine.SeedCapitalFromAccount(ctx, client, "USDT")
	}

	start, end, err := cfg.BacktestRange()
	if err != nil {
		return err
	}

	primary, secondary, err := handler.FetchHistoricalMultiTimeframe(ctx, cfg.PrimaryTimeframe, cfg.SecondaryTimeframe, start, end)
	if err != nil {
		return err
	}

	ledger, err := engine.Run(primary, secondary)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output.BacktestTradesFile), 0755); err != nil {
		return err
	}

	if err := models.SaveLedgerCsv(cfg.Output.BacktestTradesFile, ledger.Records()); err != nil {
		return err
	}

	logger.Infof("saved %d trade records to %s", ledger.Len(), cfg.Output.BacktestTradesFile)

	execution.Summarize(ledger, engine.InitialCapital(), cfg.Backtest.Commission).Render(os.Stdout)

	return nil
}

func main() {
	rootCmd.Flags().String("config", "config.yaml", "path to the YAML config file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
