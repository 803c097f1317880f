// Package feed ingests OHLCV bar series from an upstream market data
// source. Providers return immutable market.Series values; ordering
// problems in the upstream data are passed through, never repaired.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/metrics"
)

var (
	// ErrDataUnavailable means the upstream answered but had no bars.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrProviderError covers transport, status and decode failures.
	ErrProviderError = errors.New("provider error")
)

// DefaultPeriod is the lookback requested when none is given.
const DefaultPeriod = "7d"

type Provider interface {
	FetchBars(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error)

func (f ProviderFunc) FetchBars(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error) {
	return f(ctx, symbol, tf, period)
}

// Instrument records the latency and outcome of every fetch made through p.
func Instrument(p Provider, rec *metrics.Recorder) Provider {
	if rec == nil {
		return p
	}
	return ProviderFunc(func(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error) {
		start := time.Now()
		s, err := p.FetchBars(ctx, symbol, tf, period)
		rec.Fetch(tf.String(), time.Since(start), err)
		return s, err
	})
}
