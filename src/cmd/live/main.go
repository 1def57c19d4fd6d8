package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

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
	Use:   "live",
	Short: "Runs the candle-close-aligned live trading loop against the exchange testnet.",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config flag: %v", err)
		}

		maxTrades, err := cmd.Flags().GetInt("max-trades")
		if err != nil {
			log.Fatalf("error getting max-trades flag: %v", err)
		}

		if err := Run(configPath, maxTrades); err != nil {
			log.Fatalf("live trading failed: %v", err)
		}
	},
}

func Run(configPath string, maxTrades int) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	apiKey, apiSecret := config.Credentials()
	if apiKey == "" || apiSecret == "" {
		return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set for live trading")
	}

	logger := log.New()

	client := data.NewBinanceClient(apiKey, apiSecret, true, logger)
	handler := data.NewHandler(client, cfg.Symbol, logger)
	strat := strategy.NewMultiTimeframe(cfg.Strategy, logger)

	engine, err := execution.NewLiveEngine(handler, client, strat, cfg.Symbol, cfg.PrimaryTimeframe, cfg.SecondaryTimeframe, cfg.TradeQuantity, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.Run(ctx, maxTrades); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output.LiveTradesFile), 0755); err != nil {
		return err
	}

	// An empty session still writes a headered file so the matcher can tell
	// "no trades" apart from "no run".
	if err := models.SaveLedgerCsv(cfg.Output.LiveTradesFile, engine.Ledger().Records()); err != nil {
		return err
	}

	logger.Infof("saved %d trade records to %s", engine.Ledger().Len(), cfg.Output.LiveTradesFile)

	return nil
}

func main() {
	rootCmd.Flags().String("config", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().Int("max-trades", 0, "stop after this many BUY executions (0 = unlimited)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
