package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/metrics"
)

// Refresher keeps a PriceBook current by periodically fetching the
// tracked timeframe for every tradable symbol.
type Refresher struct {
	provider  Provider
	book      *market.PriceBook
	symbols   []string
	timeframe market.Timeframe
	period    string
	timeout   time.Duration
	metrics   *metrics.Recorder
	log       zerolog.Logger
	cron      *cron.Cron
}

type RefresherConfig struct {
	Symbols   []string
	Timeframe market.Timeframe
	Period    string
	Timeout   time.Duration
	Metrics   *metrics.Recorder
	Log       zerolog.Logger
}

func NewRefresher(p Provider, book *market.PriceBook, cfg RefresherConfig) *Refresher {
	if cfg.Timeframe == "" {
		cfg.Timeframe = market.TF1Day
	}
	if cfg.Period == "" {
		cfg.Period = DefaultPeriod
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &Refresher{
		provider:  p,
		book:      book,
		symbols:   cfg.Symbols,
		timeframe: cfg.Timeframe,
		period:    cfg.Period,
		timeout:   cfg.Timeout,
		metrics:   cfg.Metrics,
		log:       cfg.Log,
		cron:      cron.New(),
	}
}

// Schedule registers the refresh job. expr is a standard five field cron
// expression or a descriptor such as "@every 5m".
func (r *Refresher) Schedule(expr string) error {
	_, err := r.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RefreshNow(ctx); err != nil {
			r.log.Error().Err(err).Msg("scheduled refresh")
		}
	})
	if err != nil {
		return fmt.Errorf("register refresh %q: %w", expr, err)
	}
	return nil
}

func (r *Refresher) Start() {
	r.cron.Start()
	r.log.Info().Int("jobs", len(r.cron.Entries())).Msg("refresher started")
}

// Stop waits for a running refresh to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.log.Info().Msg("refresher stopped")
}

// RefreshNow fetches every symbol once. Symbols that fail keep their
// previous series; the failures are returned joined.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	var errs []error
	for _, sym := range r.symbols {
		s, err := r.provider.FetchBars(ctx, sym, r.timeframe, r.period)
		if err != nil {
			r.log.Warn().Err(err).Str("symbol", sym).Str("timeframe", r.timeframe.String()).Msg("refresh failed")
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		r.book.Set(s)
		if last, ok := s.Last(); ok {
			r.metrics.LastPrice(sym, last.Close)
			r.log.Debug().Str("symbol", sym).Float64("price", last.Close).Int("bars", s.Len()).Msg("price refreshed")
		}
	}
	return errors.Join(errs...)
}
