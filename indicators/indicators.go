// Package indicators computes chart indicators over a market.Series.
//
// Every function here is pure and deterministic. An empty series yields
// empty results, never an error.
package indicators

import "github.com/rustyeddy/tradereflex/market"

// Indicator consumes bars one at a time, oldest first.
type Indicator interface {
	// Name returns a stable identifier like "EMA(9)".
	Name() string

	// Reset clears all internal state.
	Reset()

	// Update consumes the next bar.
	Update(b market.Bar)

	// Value returns the current value. It is not Valid until the indicator
	// has seen enough data to define one.
	Value() Optional
}

// run feeds every bar of s through ind and collects the value after each.
func run(ind Indicator, s *market.Series) []Optional {
	out := make([]Optional, s.Len())
	for i := range out {
		ind.Update(s.Bar(i))
		out[i] = ind.Value()
	}
	return out
}
