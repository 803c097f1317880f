package indicators

import (
	"math"
	"sort"

	"github.com/rustyeddy/tradereflex/market"
)

const (
	DefaultLevelWindow = 20

	recentSwings = 50
	maxLevels    = 10
)

// FindSupportResistance returns up to 10 distinct price levels, ascending,
// each rounded to the nearest 0.5.
//
// A bar is a swing high when its high is the maximum high of the centered
// window [i-window/2, i+window/2]; swing lows likewise on lows. Windows are
// clipped at the series edges. The last 50 swing highs and the last 50
// swing lows are rounded, deduplicated and sorted, and the 10 largest are
// kept.
func FindSupportResistance(s *market.Series, window int) []float64 {
	n := s.Len()
	levels := []float64{}
	if n == 0 {
		return levels
	}
	half := window / 2
	if half < 0 {
		half = 0
	}

	var highs, lows []float64
	for i := 0; i < n; i++ {
		lo, hi := max(0, i-half), min(n-1, i+half)
		maxHigh, minLow := math.Inf(-1), math.Inf(1)
		for j := lo; j <= hi; j++ {
			b := s.Bar(j)
			maxHigh = math.Max(maxHigh, b.High)
			minLow = math.Min(minLow, b.Low)
		}
		b := s.Bar(i)
		if b.High == maxHigh {
			highs = append(highs, b.High)
		}
		if b.Low == minLow {
			lows = append(lows, b.Low)
		}
	}

	seen := make(map[float64]struct{})
	for _, lvl := range append(tail(highs, recentSwings), tail(lows, recentSwings)...) {
		r := RoundHalf(lvl)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		levels = append(levels, r)
	}

	sort.Float64s(levels)
	return tail(levels, maxLevels)
}

// RoundHalf rounds to the nearest 0.5, ties to even.
func RoundHalf(x float64) float64 {
	return math.RoundToEven(x*2) / 2
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
