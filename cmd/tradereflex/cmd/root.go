package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradereflex/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tradereflex",
	Short: "Paper trading replay server with charting indicators",
	Long: `TradeReflex replays historical price series and lets users place
simulated buy and sell orders against an in-memory account.

It provides tools for:
  - Serving the replay and chart API (serve)
  - Downloading multi-timeframe bar data to CSV (fetch)
  - Computing VWAP, EMA and support/resistance from CSV (indicators)
  - Running scripted sessions offline (replay)
  - Inspecting the SQLite trade journal (journal)`,
	SilenceUsage: true,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level for CLI commands (debug, info, warn, error)")
}

// cliLogger is the console logger used by the one-shot commands.
func cliLogger() zerolog.Logger {
	log, _, err := logging.New(logging.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		log, _, _ = logging.New(logging.Config{Format: "console", Output: "stderr"})
	}
	return log
}
