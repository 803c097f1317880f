// Package sim executes paper orders against the ledger at the latest
// tracked price. There is no slippage and no partial fill.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/journal"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/metrics"
)

// PriceSource resolves the latest price of a symbol. *market.PriceBook
// implements it.
type PriceSource interface {
	Latest(symbol string) (market.Quote, error)
}

type Engine struct {
	ledger  *ledger.Ledger
	prices  PriceSource
	journal journal.Journal
	metrics *metrics.Recorder
	log     zerolog.Logger
}

type Option func(*Engine)

func WithJournal(j journal.Journal) Option { return func(e *Engine) { e.journal = j } }

func WithMetrics(m *metrics.Recorder) Option { return func(e *Engine) { e.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

func NewEngine(l *ledger.Ledger, prices PriceSource, opts ...Option) *Engine {
	e := &Engine{
		ledger:  l,
		prices:  prices,
		journal: journal.Nop{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlaceOrder validates req, resolves the price and fills it against the
// ledger. The fill itself is atomic per (user, symbol); on error the
// ledger is untouched.
func (e *Engine) PlaceOrder(ctx context.Context, req OrderRequest) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}

	if err := req.Validate(); err != nil {
		e.reject(req, err)
		return Fill{}, err
	}

	// price lookup stays outside the ledger lock
	q, err := e.prices.Latest(req.Symbol)
	if err != nil {
		err = fmt.Errorf("%s: %w", req.Symbol, ErrNoPriceAvailable)
		e.reject(req, err)
		return Fill{}, err
	}

	key := ledger.Key{User: req.User, Symbol: req.Symbol}
	acct, trade, err := e.ledger.Fill(key, req.Side, req.Quantity, q.Price)
	if err != nil {
		e.reject(req, err)
		return Fill{}, err
	}

	e.metrics.Order(string(req.Side), "filled")
	e.log.Info().
		Str("user", req.User).
		Str("symbol", req.Symbol).
		Str("side", string(trade.Side)).
		Int64("qty", trade.Quantity).
		Float64("price", trade.Price).
		Float64("balance", acct.Balance).
		Int64("positions", acct.Positions).
		Msg("order filled")

	err = e.journal.RecordTrade(journal.TradeRecord{
		TradeID:   trade.ID,
		User:      acct.User,
		Symbol:    acct.Symbol,
		Side:      string(trade.Side),
		Quantity:  trade.Quantity,
		Price:     trade.Price,
		Balance:   acct.Balance,
		Positions: acct.Positions,
		Time:      trade.Timestamp,
	})
	if err != nil {
		// the fill stands; the journal is an audit copy
		e.log.Warn().Err(err).Str("trade_id", trade.ID).Msg("journal trade failed")
	}

	return Fill{Account: acct, Trade: trade}, nil
}

func (e *Engine) reject(req OrderRequest, err error) {
	reason := RejectReason(err)
	e.metrics.Order(string(req.Side), reason)
	e.log.Info().
		Str("user", req.User).
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Int64("qty", req.Quantity).
		Str("reason", reason).
		Err(err).
		Msg("order rejected")
}

// RejectReason maps an order error to a short label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNoPriceAvailable):
		return "no_price"
	case errors.Is(err, ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, ledger.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ledger.ErrInsufficientPosition):
		return "insufficient_position"
	}
	return "error"
}
