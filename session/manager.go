// Package session manages replay sessions: the binding of a user to a
// fresh ledger entry for one symbol.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradereflex/journal"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/metrics"
)

var ErrInvalidUser = errors.New("invalid user")

type Manager struct {
	ledger  *ledger.Ledger
	symbols market.Symbols
	balance decimal.Decimal
	journal journal.Journal
	metrics *metrics.Recorder
	log     zerolog.Logger
}

type Option func(*Manager)

// WithInitialBalance sets the cash a session starts with.
func WithInitialBalance(b float64) Option {
	return func(m *Manager) { m.balance = decimal.NewFromFloat(b) }
}

func WithJournal(j journal.Journal) Option { return func(m *Manager) { m.journal = j } }

func WithMetrics(r *metrics.Recorder) Option { return func(m *Manager) { m.metrics = r } }

func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.log = l } }

func NewManager(l *ledger.Ledger, symbols market.Symbols, opts ...Option) *Manager {
	m := &Manager{
		ledger:  l,
		symbols: symbols,
		balance: ledger.DefaultBalance,
		journal: journal.Nop{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens or resets the session for user on symbol. A reset restores
// the initial balance and clears positions but keeps the trade history.
func (m *Manager) Start(user, symbol string) (ledger.Account, error) {
	if strings.TrimSpace(user) == "" {
		return ledger.Account{}, ErrInvalidUser
	}
	if !m.symbols.Known(symbol) {
		return ledger.Account{}, fmt.Errorf("%q: %w", symbol, market.ErrUnknownSymbol)
	}

	key := ledger.Key{User: user, Symbol: symbol}
	acct := m.ledger.Open(key, m.balance)

	m.metrics.SessionStarted(symbol)
	m.log.Info().
		Str("user", user).
		Str("symbol", symbol).
		Float64("balance", acct.Balance).
		Msg("replay session started")

	err := m.journal.RecordAccount(journal.AccountSnapshot{
		Time:      time.Now(),
		User:      user,
		Symbol:    symbol,
		Balance:   acct.Balance,
		Positions: acct.Positions,
		Event:     "session_start",
	})
	if err != nil {
		m.log.Warn().Err(err).Str("key", key.String()).Msg("journal session start failed")
	}
	return acct, nil
}

// Account fails with ledger.ErrSessionNotFound if no session was started.
func (m *Manager) Account(user, symbol string) (ledger.Account, error) {
	return m.ledger.Account(ledger.Key{User: user, Symbol: symbol})
}

// Trades never fails; an unknown session has no trades.
func (m *Manager) Trades(user, symbol string) []ledger.Trade {
	return m.ledger.Trades(ledger.Key{User: user, Symbol: symbol})
}

func (m *Manager) Symbols() []string { return m.symbols.List() }
