package feed

import (
	"context"
	"sync"

	"github.com/rustyeddy/tradereflex/market"
)

// MultiResult holds one series or one error per requested timeframe.
type MultiResult struct {
	Series map[market.Timeframe]*market.Series
	Errors map[market.Timeframe]error
}

// OK reports whether at least one timeframe was fetched.
func (r MultiResult) OK() bool { return len(r.Series) > 0 }

// FetchMulti fetches every timeframe concurrently. A failure in one
// timeframe never affects the others.
func FetchMulti(ctx context.Context, p Provider, symbol, period string, tfs ...market.Timeframe) MultiResult {
	if len(tfs) == 0 {
		tfs = market.Timeframes
	}
	res := MultiResult{
		Series: make(map[market.Timeframe]*market.Series, len(tfs)),
		Errors: make(map[market.Timeframe]error),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, tf := range tfs {
		wg.Add(1)
		go func(tf market.Timeframe) {
			defer wg.Done()
			s, err := p.FetchBars(ctx, symbol, tf, period)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors[tf] = err
				return
			}
			res.Series[tf] = s
		}(tf)
	}
	wg.Wait()
	return res
}
