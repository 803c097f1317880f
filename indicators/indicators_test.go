package indicators

import (
	"encoding/json"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/rustyeddy/tradereflex/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(tf market.Timeframe, bars ...market.Bar) *market.Series {
	for i := range bars {
		if bars[i].Timestamp == 0 {
			bars[i].Timestamp = int64(1704067200 + i*86400)
		}
	}
	return market.NewSeries("AAPL", tf, bars)
}

func closes(cs ...float64) *market.Series {
	bars := make([]market.Bar, len(cs))
	for i, c := range cs {
		bars[i] = market.Bar{Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return seriesOf(market.TF1Day, bars...)
}

func randomSeries(r *rand.Rand, n int) *market.Series {
	bars := make([]market.Bar, n)
	price := 150.0
	for i := range bars {
		price += r.Float64()*4 - 2
		hi := price + r.Float64()*3
		lo := price - r.Float64()*3
		bars[i] = market.Bar{Open: price, High: hi, Low: lo, Close: price, Volume: float64(r.Intn(5000))}
	}
	return seriesOf(market.TF1Day, bars...)
}

func TestEmptySeries(t *testing.T) {
	empty := market.NewSeries("AAPL", market.TF1Day, nil)

	assert.Empty(t, VWAP(empty))
	assert.Empty(t, EMA(empty, 9))
	levels := FindSupportResistance(empty, 20)
	assert.NotNil(t, levels)
	assert.Empty(t, levels)

	r := Compute(empty)
	assert.Empty(t, r.VWAP)
	assert.Empty(t, r.EMA9)
	assert.Empty(t, r.Levels)
}

func TestVWAP(t *testing.T) {
	s := seriesOf(market.TF1Min,
		market.Bar{High: 12, Low: 8, Close: 10, Volume: 100}, // typical 10
		market.Bar{High: 22, Low: 18, Close: 20, Volume: 300}, // typical 20
	)
	v := VWAP(s)
	require.Len(t, v, 2)
	assert.InDelta(t, 10.0, v[0].Value, 1e-12)
	assert.InDelta(t, (10*100+20*300)/400.0, v[1].Value, 1e-12)
}

func TestVWAPZeroVolumeIsUndefined(t *testing.T) {
	s := seriesOf(market.TF1Min,
		market.Bar{High: 12, Low: 8, Close: 10, Volume: 0},
		market.Bar{High: 12, Low: 8, Close: 10, Volume: 0},
		market.Bar{High: 22, Low: 18, Close: 20, Volume: 50},
	)
	v := VWAP(s)
	require.Len(t, v, 3)
	assert.False(t, v[0].Valid)
	assert.False(t, v[1].Valid)
	assert.Nil(t, v[0].Ptr())
	assert.True(t, v[2].Valid)
	assert.InDelta(t, 20.0, v[2].Value, 1e-12)
}

func TestVWAPPrefixConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := randomSeries(r, 120)
	full := VWAP(s)

	bars := s.Bars()
	for _, n := range []int{1, 2, 17, 60, 119} {
		prefix := VWAP(market.NewSeries("AAPL", market.TF1Day, bars[:n]))
		assert.Equal(t, full[:n], prefix, "prefix %d", n)
	}
}

func TestEMAFirstValueIsFirstClose(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	s := randomSeries(r, 30)
	e := EMA(s, 9)
	require.Len(t, e, 30)
	assert.True(t, e[0].Valid)
	assert.Equal(t, s.Bar(0).Close, e[0].Value)
	for _, v := range e {
		assert.True(t, v.Valid)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	cs := make([]float64, 50)
	for i := range cs {
		cs[i] = 187.37
	}
	for _, v := range EMA(closes(cs...), 9) {
		assert.Equal(t, 187.37, v.Value)
	}
}

func TestEMAAdjustedWeighting(t *testing.T) {
	// span 3 => alpha 0.5
	e := EMA(closes(1, 2, 3), 3)
	require.Len(t, e, 3)
	assert.InDelta(t, 1.0, e[0].Value, 1e-12)
	assert.InDelta(t, 2.5/1.5, e[1].Value, 1e-12)
	assert.InDelta(t, 4.25/1.75, e[2].Value, 1e-12)

	// span 9 => alpha 0.2, explicit weighted mean
	cs := []float64{10, 11, 9, 12, 13, 8, 14}
	got := EMA(closes(cs...), 9)
	for n := range cs {
		var num, den float64
		for k := 0; k <= n; k++ {
			w := math.Pow(0.8, float64(k))
			num += w * cs[n-k]
			den += w
		}
		assert.InDelta(t, num/den, got[n].Value, 1e-9, "index %d", n)
	}
}

func TestStreamingReset(t *testing.T) {
	ema := NewEMA(9)
	assert.Equal(t, "EMA(9)", ema.Name())
	ema.Update(market.Bar{Close: 5})
	ema.Reset()
	assert.False(t, ema.Value().Valid)
	ema.Update(market.Bar{Close: 7})
	assert.Equal(t, 7.0, ema.Value().Value)

	vwap := NewVWAP()
	vwap.Update(market.Bar{High: 3, Low: 3, Close: 3, Volume: 10})
	vwap.Reset()
	assert.False(t, vwap.Value().Valid)
}

func TestFindSupportResistanceSwings(t *testing.T) {
	s := seriesOf(market.TF1Day,
		market.Bar{High: 10, Low: 9},
		market.Bar{High: 12, Low: 11},
		market.Bar{High: 11, Low: 10},
		market.Bar{High: 9, Low: 8},
		market.Bar{High: 8, Low: 7},
	)
	assert.Equal(t, []float64{7, 12}, FindSupportResistance(s, 20))
}

func TestFindSupportResistanceRounding(t *testing.T) {
	s := seriesOf(market.TF1Day,
		market.Bar{High: 12.3, Low: 10.1},
		market.Bar{High: 11, Low: 10.8},
	)
	// 12.3 -> 12.5, 10.1 -> 10.0
	assert.Equal(t, []float64{10, 12.5}, FindSupportResistance(s, 20))

	assert.Equal(t, 12.0, RoundHalf(12.25))
	assert.Equal(t, 13.0, RoundHalf(12.75))
	assert.Equal(t, 12.5, RoundHalf(12.4))
}

func TestFindSupportResistanceKeepsLargestTen(t *testing.T) {
	bars := make([]market.Bar, 60)
	for i := range bars {
		bars[i] = market.Bar{High: float64(100 + i), Low: float64(50 + i)}
	}
	// window 0: every bar is its own extremum
	got := FindSupportResistance(seriesOf(market.TF1Day, bars...), 0)
	want := []float64{150, 151, 152, 153, 154, 155, 156, 157, 158, 159}
	assert.Equal(t, want, got)
}

func TestFindSupportResistanceProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		s := randomSeries(r, 10+r.Intn(300))
		levels := FindSupportResistance(s, 20)

		assert.LessOrEqual(t, len(levels), 10)
		assert.True(t, sort.Float64sAreSorted(levels))
		for i, l := range levels {
			assert.Equal(t, 0.0, math.Mod(l*2, 1), "level %v not a multiple of 0.5", l)
			if i > 0 {
				assert.NotEqual(t, levels[i-1], l)
			}
		}
	}
}

func TestComputeLevelsDailyOnly(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	daily := randomSeries(r, 40)
	res := Compute(daily)
	assert.Len(t, res.VWAP, 40)
	assert.Len(t, res.EMA9, 40)
	assert.NotEmpty(t, res.Levels)

	hourly := market.NewSeries("AAPL", market.TF1Hour, daily.Bars())
	res = Compute(hourly)
	assert.NotNil(t, res.Levels)
	assert.Empty(t, res.Levels)
}

func TestOptionalJSON(t *testing.T) {
	b, err := json.Marshal([]Optional{Some(1.5), {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(b))

	var back []Optional
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []Optional{Some(1.5), {}}, back)

	assert.False(t, Some(math.NaN()).Valid)
}
