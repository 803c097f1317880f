// Package replay drives a paper-trading session from a scripted CSV.
// Each row advances the price book by one bar and may carry an order.
package replay

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/sim"
)

// DefaultUser owns the orders of a script that names no user.
const DefaultUser = "replay"

type Sessions interface {
	Start(user, symbol string) (ledger.Account, error)
}

type Orders interface {
	PlaceOrder(ctx context.Context, req sim.OrderRequest) (sim.Fill, error)
}

// Options controls how a script is applied.
type Options struct {
	User      string
	Timeframe market.Timeframe

	// EventFirst applies the row's event before its bar, so orders fill at
	// the previous close.
	EventFirst bool

	// Strict stops at the first rejected order. Otherwise rejections are
	// collected in the Result and the replay goes on.
	Strict bool

	Log zerolog.Logger
}

// Rejection is an order the engine refused.
type Rejection struct {
	Line int
	Err  error
}

type Result struct {
	Bars     int
	Fills    []sim.Fill
	Rejected []Rejection
}

// Runner owns the bars seen so far and pushes them into the book.
type Runner struct {
	book     *market.PriceBook
	sessions Sessions
	orders   Orders
	opts     Options
	bars     map[string][]market.Bar
}

func NewRunner(book *market.PriceBook, s Sessions, o Orders, opts Options) *Runner {
	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Timeframe == "" {
		opts.Timeframe = market.TF1Day
	}
	return &Runner{
		book:     book,
		sessions: s,
		orders:   o,
		opts:     opts,
		bars:     make(map[string][]market.Bar),
	}
}

// Run reads a script in the form
//
//	time,symbol,open,high,low,close[,volume[,event,arg1]]
//
// A header row starting with "time" is skipped. Events are case-insensitive:
//
//	START            start (or reset) the session for the row's symbol
//	BUY   qty        market buy
//	SELL  qty        market sell
//
// Malformed rows always stop the replay.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Result, error) {
	var res Result

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		line++
		if len(row) == 0 || (line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time")) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.row(ctx, line, row, &res); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func (r *Runner) row(ctx context.Context, line int, row []string, res *Result) error {
	symbol, bar, err := parseBar(row)
	if err != nil {
		return err
	}

	var event, arg string
	if len(row) > 7 {
		event = strings.ToUpper(strings.TrimSpace(row[7]))
	}
	if len(row) > 8 {
		arg = strings.TrimSpace(row[8])
	}

	if !r.opts.EventFirst {
		r.advance(symbol, bar)
		res.Bars++
	}
	if event != "" {
		if err := r.event(ctx, line, symbol, event, arg, res); err != nil {
			return err
		}
	}
	if r.opts.EventFirst {
		r.advance(symbol, bar)
		res.Bars++
	}
	return nil
}

func (r *Runner) advance(symbol string, bar market.Bar) {
	bars := append(r.bars[symbol], bar)
	r.bars[symbol] = bars
	r.book.Set(market.NewSeries(symbol, r.opts.Timeframe, bars))
}

func (r *Runner) event(ctx context.Context, line int, symbol, event, arg string, res *Result) error {
	switch event {
	case "START":
		_, err := r.sessions.Start(r.opts.User, symbol)
		return err

	case "BUY", "SELL":
		qty, err := sim.ParseQuantity(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", event, err)
		}
		fill, err := r.orders.PlaceOrder(ctx, sim.OrderRequest{
			User:     r.opts.User,
			Symbol:   symbol,
			Side:     ledger.Side(strings.ToLower(event)),
			Quantity: qty,
		})
		if err != nil {
			if r.opts.Strict {
				return err
			}
			r.opts.Log.Debug().Int("line", line).Err(err).Msg("replay order rejected")
			res.Rejected = append(res.Rejected, Rejection{Line: line, Err: err})
			return nil
		}
		res.Fills = append(res.Fills, fill)
		return nil
	}
	return fmt.Errorf("unknown event %q", event)
}

func parseBar(row []string) (string, market.Bar, error) {
	if len(row) < 6 {
		return "", market.Bar{}, fmt.Errorf("need at least 6 columns (time,symbol,open,high,low,close), got %d", len(row))
	}
	ts, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return "", market.Bar{}, err
	}
	symbol := strings.ToUpper(strings.TrimSpace(row[1]))
	if symbol == "" {
		return "", market.Bar{}, errors.New("empty symbol")
	}

	var ohlc [4]float64
	for i := range ohlc {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return "", market.Bar{}, fmt.Errorf("bad price %q: %w", row[2+i], err)
		}
		ohlc[i] = v
	}

	var volume float64
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		volume, err = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return "", market.Bar{}, fmt.Errorf("bad volume %q: %w", row[6], err)
		}
	}

	return symbol, market.Bar{
		Timestamp: ts,
		Open:      ohlc[0],
		High:      ohlc[1],
		Low:       ohlc[2],
		Close:     ohlc[3],
		Volume:    volume,
	}, nil
}

// parseTime accepts RFC3339 or unix seconds.
func parseTime(s string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return ts, nil
}
