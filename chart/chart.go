// Package chart composes multi-timeframe bar fetches with indicator
// annotation into the payload a charting front end draws.
package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/feed"
	"github.com/rustyeddy/tradereflex/indicators"
	"github.com/rustyeddy/tradereflex/market"
)

// Candle is a bar with the indicator values defined at it. Undefined
// values are omitted from JSON.
type Candle struct {
	market.Bar
	VWAP *float64 `json:"vwap,omitempty"`
	EMA9 *float64 `json:"ema9,omitempty"`
}

type Chart struct {
	Candles  []Candle  `json:"candles"`
	SRLevels []float64 `json:"sr_levels"`
}

// Annotate attaches indicators to every bar of s. Support and resistance
// levels are only computed for daily series.
func Annotate(s *market.Series) Chart {
	res := indicators.Compute(s)
	bars := s.Bars()
	c := Chart{
		Candles:  make([]Candle, len(bars)),
		SRLevels: res.Levels,
	}
	if c.SRLevels == nil {
		c.SRLevels = []float64{}
	}
	for i, b := range bars {
		c.Candles[i] = Candle{
			Bar:  b,
			VWAP: res.VWAP[i].Ptr(),
			EMA9: res.EMA9[i].Ptr(),
		}
	}
	return c
}

type Service struct {
	provider   feed.Provider
	timeframes []market.Timeframe
	log        zerolog.Logger
}

func NewService(p feed.Provider, log zerolog.Logger) *Service {
	return &Service{provider: p, timeframes: market.Timeframes, log: log}
}

// ChartData fetches every timeframe of symbol and annotates what arrived.
// Timeframes that fail are logged and left out; an error is returned only
// when nothing could be fetched.
func (s *Service) ChartData(ctx context.Context, symbol, period string) (map[market.Timeframe]Chart, error) {
	if period == "" {
		period = feed.DefaultPeriod
	}
	res := feed.FetchMulti(ctx, s.provider, symbol, period, s.timeframes...)

	var errs []error
	for _, tf := range s.timeframes {
		if err, ok := res.Errors[tf]; ok {
			s.log.Warn().Err(err).Str("symbol", symbol).Str("timeframe", tf.String()).Msg("chart fetch failed")
			errs = append(errs, fmt.Errorf("%s: %w", tf, err))
		}
	}
	if !res.OK() {
		return nil, errors.Join(errs...)
	}

	out := make(map[market.Timeframe]Chart, len(res.Series))
	for tf, series := range res.Series {
		out[tf] = Annotate(series)
	}
	return out, nil
}
