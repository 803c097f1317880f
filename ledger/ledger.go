// Package ledger keeps per (user, symbol) cash and position state and the
// append-only trade log that goes with it.
//
// Each key has its own mutex. Every read or write of a key's state holds
// that mutex, so a fill is observed either entirely or not at all, while
// different keys proceed in parallel.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradereflex/internal/id"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientPosition = errors.New("insufficient position")
)

// DefaultBalance is the cash every new or reset session starts with.
var DefaultBalance = decimal.NewFromInt(10000)

type slot struct {
	mu sync.Mutex

	active    bool
	balance   decimal.Decimal
	positions int64
	trades    []Trade
}

// Ledger owns the account table and trade logs for the life of the
// process.
type Ledger struct {
	mu    sync.Mutex
	slots map[Key]*slot
	now   func() time.Time
}

func New() *Ledger {
	return &Ledger{
		slots: make(map[Key]*slot),
		now:   time.Now,
	}
}

// SetClock overrides the source of trade timestamps.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Ledger) slot(k Key, create bool) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[k]
	if !ok && create {
		s = &slot{}
		l.slots[k] = s
	}
	return s
}

func (l *Ledger) clock() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now()
}

func (s *slot) snapshot(k Key) Account {
	return Account{
		User:      k.User,
		Symbol:    k.Symbol,
		Balance:   s.balance.InexactFloat64(),
		Positions: s.positions,
	}
}

// Open activates k with the given balance and no positions. Opening an
// active key resets balance and positions; its trade log is kept.
func (l *Ledger) Open(k Key, balance decimal.Decimal) Account {
	s := l.slot(k, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	s.balance = balance
	s.positions = 0
	return s.snapshot(k)
}

// Account returns a snapshot of k.
func (l *Ledger) Account(k Key) (Account, error) {
	s := l.slot(k, false)
	if s == nil {
		return Account{}, fmt.Errorf("%s: %w", k, ErrSessionNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Account{}, fmt.Errorf("%s: %w", k, ErrSessionNotFound)
	}
	return s.snapshot(k), nil
}

// Trades returns a copy of k's trade log, empty if k was never opened.
func (l *Ledger) Trades(k Key) []Trade {
	s := l.slot(k, false)
	if s == nil {
		return []Trade{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// Fill applies an order of qty units at price to k and appends the trade.
// Checking, mutating and appending happen under k's lock; on any error
// nothing changes. qty must be positive and side valid, the caller
// validates both.
func (l *Ledger) Fill(k Key, side Side, qty int64, price float64) (Account, Trade, error) {
	if qty <= 0 || !side.Valid() {
		return Account{}, Trade{}, fmt.Errorf("fill %s: bad order %s %d", k, side, qty)
	}

	s := l.slot(k, false)
	if s == nil {
		return Account{}, Trade{}, fmt.Errorf("%s: %w", k, ErrSessionNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Account{}, Trade{}, fmt.Errorf("%s: %w", k, ErrSessionNotFound)
	}

	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty))
	switch side {
	case Buy:
		if s.balance.LessThan(notional) {
			return Account{}, Trade{}, fmt.Errorf("%s: cost %s exceeds balance %s: %w",
				k, notional.StringFixed(2), s.balance.StringFixed(2), ErrInsufficientFunds)
		}
		s.balance = s.balance.Sub(notional)
		s.positions += qty
	case Sell:
		if s.positions < qty {
			return Account{}, Trade{}, fmt.Errorf("%s: selling %d with %d held: %w",
				k, qty, s.positions, ErrInsufficientPosition)
		}
		s.balance = s.balance.Add(notional)
		s.positions -= qty
	}

	at := l.clock()
	t := Trade{
		ID:        id.NewAt(at),
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Timestamp: at,
	}
	s.trades = append(s.trades, t)
	return s.snapshot(k), t, nil
}

// Keys lists every opened key.
func (l *Ledger) Keys() []Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Key, 0, len(l.slots))
	for k := range l.slots {
		out = append(out, k)
	}
	return out
}
