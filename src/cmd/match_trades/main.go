package main

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mtf-trader/src/config"
	"mtf-trader/src/matcher"
	"mtf-trader/src/models"
)

var rootCmd = &cobra.Command{
	Use:   "match_trades",
	Short: "Reconciles the live trade log against the backtest trade log.",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config flag: %v", err)
		}

		windowStr, err := cmd.Flags().GetString("window")
		if err != nil {
			log.Fatalf("error getting window flag: %v", err)
		}

		if err := Run(configPath, windowStr); err != nil {
			log.Fatalf("comparison failed: %v", err)
		}
	},
}

func Run(configPath, windowStr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var window time.Duration
	if windowStr != "" {
		window, err = time.ParseDuration(windowStr)
	} else {
		window, err = cfg.MatchWindow()
	}

	if err != nil {
		return err
	}

	candidate, err := models.LoadLedgerCsv(cfg.Output.LiveTradesFile)
	if err != nil {
		return err
	}

	reference, err := models.LoadLedgerCsv(cfg.Output.BacktestTradesFile)
	if err != nil {
		return err
	}

	log.Infof("loaded %d live and %d backtest trade records", len(candidate), len(reference))

	report := matcher.MatchLedgers(candidate, reference, window)
	report.Render(os.Stdout)

	return nil
}

func main() {
	rootCmd.Flags().String("config", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().String("window", "", "matching tolerance window override, e.g. 15m")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
