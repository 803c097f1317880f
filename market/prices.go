package market

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNoPrice = errors.New("no price available")

// Quote is the latest known price of a symbol: the close of the last bar
// of its tracked series.
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// PriceBook holds the tracked series per symbol. A new series replaces
// the previous one wholesale.
type PriceBook struct {
	mu     sync.RWMutex
	series map[string]*Series
}

func NewPriceBook() *PriceBook {
	return &PriceBook{series: make(map[string]*Series)}
}

func (pb *PriceBook) Set(s *Series) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.series[s.Symbol()] = s
}

// Series returns the tracked series for symbol, nil if none.
func (pb *PriceBook) Series(symbol string) *Series {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.series[symbol]
}

func (pb *PriceBook) Latest(symbol string) (Quote, error) {
	last, ok := pb.Series(symbol).Last()
	if !ok {
		return Quote{}, fmt.Errorf("%s: %w", symbol, ErrNoPrice)
	}
	return Quote{Symbol: symbol, Price: last.Close, Time: last.Time()}, nil
}
