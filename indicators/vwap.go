package indicators

import "github.com/rustyeddy/tradereflex/market"

// VWAP returns the cumulative volume weighted average price at each bar.
// A bar where cumulative volume is still zero has no value.
func VWAP(s *market.Series) []Optional {
	return run(NewVWAP(), s)
}
