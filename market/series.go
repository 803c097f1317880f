package market

// Series is an immutable, time-ordered run of bars for one symbol and
// timeframe. Ordering is whatever the source delivered; Series never
// sorts or repairs it, see Monotonic.
type Series struct {
	symbol    string
	timeframe Timeframe
	bars      []Bar
}

// NewSeries copies bars into a new Series.
func NewSeries(symbol string, tf Timeframe, bars []Bar) *Series {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &Series{symbol: symbol, timeframe: tf, bars: cp}
}

func (s *Series) Symbol() string       { return s.symbol }
func (s *Series) Timeframe() Timeframe { return s.timeframe }

// Len is safe on a nil Series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bars)
}

// Bar returns the i'th bar.
func (s *Series) Bar(i int) Bar { return s.bars[i] }

// Bars returns a copy of the underlying bars.
func (s *Series) Bars() []Bar {
	if s == nil {
		return nil
	}
	cp := make([]Bar, len(s.bars))
	copy(cp, s.bars)
	return cp
}

// Last returns the most recent bar, false if the series is empty.
func (s *Series) Last() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Monotonic reports whether timestamps strictly increase.
func (s *Series) Monotonic() bool {
	for i := 1; i < s.Len(); i++ {
		if s.bars[i].Timestamp <= s.bars[i-1].Timestamp {
			return false
		}
	}
	return true
}
