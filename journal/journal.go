// Package journal is an append-only audit sink for fills and account
// changes. It is write-only from the engine's point of view: nothing is
// ever reloaded from a journal into the ledger.
package journal

import "time"

// TradeRecord is one executed fill together with the account state it
// produced.
type TradeRecord struct {
	TradeID   string
	User      string
	Symbol    string
	Side      string
	Quantity  int64
	Price     float64
	Balance   float64
	Positions int64
	Time      time.Time
}

// AccountSnapshot records the state of an account after an event such as
// a session start.
type AccountSnapshot struct {
	Time      time.Time
	User      string
	Symbol    string
	Balance   float64
	Positions int64
	Event     string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordAccount(AccountSnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordAccount(AccountSnapshot) error { return nil }
func (Nop) Close() error                        { return nil }
