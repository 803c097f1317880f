package indicators

import (
	"fmt"

	"github.com/rustyeddy/tradereflex/market"
)

// CumulativeVWAP is a running volume weighted average of the typical
// price. It never resets mid-stream.
type CumulativeVWAP struct {
	pv  float64
	vol float64
}

func NewVWAP() *CumulativeVWAP { return &CumulativeVWAP{} }

func (v *CumulativeVWAP) Name() string { return "VWAP" }

func (v *CumulativeVWAP) Reset() { v.pv, v.vol = 0, 0 }

func (v *CumulativeVWAP) Update(b market.Bar) {
	v.pv += b.TypicalPrice() * b.Volume
	v.vol += b.Volume
}

// Value is undefined while cumulative volume is zero.
func (v *CumulativeVWAP) Value() Optional {
	if v.vol == 0 {
		return Optional{}
	}
	return Some(v.pv / v.vol)
}

// ExponentialMA is a span based EMA of closes using adjusted weighting:
// bar k back carries weight (1-alpha)^k and the average is normalised by
// the sum of weights seen so far, so the first value equals the first
// close.
type ExponentialMA struct {
	period int
	decay  float64 // 1 - alpha
	weight float64 // sum of weights so far
	ema    float64
	count  int
}

// NewEMA creates an EMA with alpha = 2/(period+1).
func NewEMA(period int) *ExponentialMA {
	if period < 1 {
		period = 1
	}
	return &ExponentialMA{
		period: period,
		decay:  1 - 2.0/float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *ExponentialMA) Reset() {
	e.weight, e.ema, e.count = 0, 0, 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	e.weight = 1 + e.decay*e.weight
	if e.count == 0 {
		e.ema = b.Close
	} else {
		// equivalent to sum(w*x)/sum(w); this form keeps a constant input exact
		e.ema += (b.Close - e.ema) / e.weight
	}
	e.count++
}

func (e *ExponentialMA) Value() Optional {
	if e.count == 0 {
		return Optional{}
	}
	return Some(e.ema)
}
