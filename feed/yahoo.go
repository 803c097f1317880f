package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/tradereflex/market"
)

const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches bars from the Yahoo Finance v8 chart API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // internal symbol -> Yahoo ticker
}

type YahooOptions struct {
	BaseURL string
	Timeout time.Duration
	Proxy   string
}

func NewYahooProvider(opts YahooOptions) (*YahooProvider, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.Proxy != "" {
		u, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("yahoo proxy %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooURL
	}
	return &YahooProvider{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
		},
	}, nil
}

func (y *YahooProvider) ticker(symbol string) string {
	if mapped, ok := y.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// Quote fields are pointers so JSON nulls can be told apart from zero.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *YahooProvider) FetchBars(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: unsupported timeframe %q", ErrProviderError, tf)
	}
	if period == "" {
		period = DefaultPeriod
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.BaseURL, url.PathEscape(y.ticker(symbol)), tf.Interval(), url.QueryEscape(period))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderError, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch %s %s: %w", ErrProviderError, symbol, tf, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %w", ErrProviderError, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: yahoo status %d", ErrProviderError, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: yahoo decode: %w", ErrProviderError, err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s %s: %s", ErrDataUnavailable, symbol, tf, e.Description)
		}
		return nil, fmt.Errorf("%w: yahoo api error %s: %s", ErrProviderError, e.Code, e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo status %d", ErrProviderError, resp.StatusCode)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrDataUnavailable, symbol, tf)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]market.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		vol, _ := at(quote.Volume, i)
		bars = append(bars, market.Bar{
			Timestamp: ts,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    vol,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s: every row was empty", ErrDataUnavailable, symbol, tf)
	}
	return market.NewSeries(symbol, tf, bars), nil
}

func at(xs []*float64, i int) (float64, bool) {
	if i >= len(xs) || xs[i] == nil {
		return 0, false
	}
	return *xs[i], true
}
