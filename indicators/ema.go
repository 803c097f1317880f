package indicators

import "github.com/rustyeddy/tradereflex/market"

// DefaultEMAPeriod is the span used for chart annotation.
const DefaultEMAPeriod = 9

// EMA returns the exponential moving average of closes at every bar,
// including the first.
func EMA(s *market.Series, period int) []Optional {
	return run(NewEMA(period), s)
}
