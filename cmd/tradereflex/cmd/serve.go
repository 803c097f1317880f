package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradereflex/api"
	"github.com/rustyeddy/tradereflex/chart"
	"github.com/rustyeddy/tradereflex/config"
	"github.com/rustyeddy/tradereflex/feed"
	"github.com/rustyeddy/tradereflex/internal/logging"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/metrics"
	"github.com/rustyeddy/tradereflex/session"
	"github.com/rustyeddy/tradereflex/sim"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the replay and chart API server",
	Long: `Start the HTTP API. Prices for the tradable symbols are fetched once at
startup and then refreshed on the configured schedule.

Example:
  tradereflex serve -f tradereflex.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "file", "f", "", "path to config file (defaults are used when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	provider, closeProvider, err := buildProvider(ctx, cfg, rec, log)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	defer closeProvider()

	j, err := buildJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer j.Close()

	symbols := market.NewSymbols(cfg.Session.Symbols...)
	tf, err := market.ParseTimeframe(cfg.Refresh.Timeframe)
	if err != nil {
		return err
	}
	providerTimeout, _ := config.Duration(cfg.Provider.Timeout, 30*time.Second)

	book := market.NewPriceBook()
	refresher := feed.NewRefresher(provider, book, feed.RefresherConfig{
		Symbols:   symbols.List(),
		Timeframe: tf,
		Period:    cfg.Provider.Period,
		Timeout:   providerTimeout * time.Duration(len(symbols)),
		Metrics:   rec,
		Log:       log,
	})
	if err := refresher.RefreshNow(ctx); err != nil {
		log.Warn().Err(err).Msg("initial price refresh incomplete")
	}
	if cfg.Refresh.Enabled {
		if err := refresher.Schedule(cfg.Refresh.Schedule); err != nil {
			return err
		}
		refresher.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			refresher.Stop(sctx)
		}()
	}

	l := ledger.New()
	engine := sim.NewEngine(l, book,
		sim.WithJournal(j),
		sim.WithMetrics(rec),
		sim.WithLogger(log),
	)
	sessions := session.NewManager(l, symbols,
		session.WithInitialBalance(cfg.Session.InitialBalance),
		session.WithJournal(j),
		session.WithMetrics(rec),
		session.WithLogger(log),
	)
	charts := chart.NewService(provider, log)

	read, _ := config.Duration(cfg.Server.ReadTimeout, 15*time.Second)
	write, _ := config.Duration(cfg.Server.WriteTimeout, 30*time.Second)
	shutdown, _ := config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second)

	srv := api.NewServer(
		api.NewHandler(sessions, engine, charts, log),
		log,
		api.WithAddr(cfg.Server.Host, cfg.Server.Port),
		api.WithTimeouts(read, write, shutdown),
		api.WithMetrics(reg),
	)
	return srv.Run(ctx)
}
