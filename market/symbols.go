package market

import (
	"errors"
	"sort"
	"strings"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// DefaultSymbols are tradable when nothing else is configured.
var DefaultSymbols = []string{"AAPL", "GOOG", "TSLA"}

// Symbols is the set of tradable symbols. It is built once and read-only
// afterwards.
type Symbols map[string]struct{}

func NewSymbols(names ...string) Symbols {
	s := make(Symbols, len(names))
	for _, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

func (s Symbols) Known(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// List returns the symbols sorted.
func (s Symbols) List() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
