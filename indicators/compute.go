package indicators

import "github.com/rustyeddy/tradereflex/market"

// Result is the per-bar annotation of a series. It sits alongside the
// series rather than modifying it.
type Result struct {
	VWAP   []Optional `json:"vwap"`
	EMA9   []Optional `json:"ema9"`
	Levels []float64  `json:"sr_levels"`
}

// Compute runs the whole pipeline. Levels are only computed for daily
// series; other timeframes get an empty slice.
func Compute(s *market.Series) Result {
	r := Result{
		VWAP:   VWAP(s),
		EMA9:   EMA(s, DefaultEMAPeriod),
		Levels: []float64{},
	}
	if s.Len() > 0 && s.Timeframe().Daily() {
		r.Levels = FindSupportResistance(s, DefaultLevelWindow)
	}
	return r
}
