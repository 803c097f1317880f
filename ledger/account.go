package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies one ledger entry.
type Key struct {
	User   string
	Symbol string
}

func (k Key) String() string { return k.User + "/" + k.Symbol }

// Account is a point-in-time snapshot of a ledger entry.
type Account struct {
	User      string  `json:"user"`
	Symbol    string  `json:"symbol"`
	Balance   float64 `json:"balance"`
	Positions int64   `json:"positions"`
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", fmt.Errorf("side must be buy or sell, got %q", s)
}

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Trade is an executed fill. Trades are never modified once recorded.
type Trade struct {
	ID        string    `json:"id"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"qty"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
