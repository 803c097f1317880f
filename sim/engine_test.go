package sim

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradereflex/journal"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
)

type fixedPrice map[string]float64

func (f fixedPrice) Latest(symbol string) (market.Quote, error) {
	p, ok := f[symbol]
	if !ok {
		return market.Quote{}, market.ErrNoPrice
	}
	return market.Quote{Symbol: symbol, Price: p}, nil
}

type testJournal struct {
	mu     sync.Mutex
	trades []journal.TradeRecord
	err    error
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, rec)
	return j.err
}

func (j *testJournal) RecordAccount(journal.AccountSnapshot) error { return nil }
func (j *testJournal) Close() error                                { return nil }

var aliceAAPL = ledger.Key{User: "alice", Symbol: "AAPL"}

func newEngine(t *testing.T, price float64) (*Engine, *ledger.Ledger, *testJournal) {
	t.Helper()
	l := ledger.New()
	j := &testJournal{}
	return NewEngine(l, fixedPrice{"AAPL": price}, WithJournal(j)), l, j
}

func order(side ledger.Side, qty int64) OrderRequest {
	return OrderRequest{User: "alice", Symbol: "AAPL", Side: side, Quantity: qty}
}

func TestPlaceOrderScenario(t *testing.T) {
	e, l, j := newEngine(t, 150)
	ctx := context.Background()

	acct := l.Open(aliceAAPL, ledger.DefaultBalance)
	assert.Equal(t, 10000.0, acct.Balance)
	assert.Equal(t, int64(0), acct.Positions)

	fill, err := e.PlaceOrder(ctx, order(ledger.Buy, 10))
	require.NoError(t, err)
	assert.Equal(t, 8500.0, fill.Account.Balance)
	assert.Equal(t, int64(10), fill.Account.Positions)
	assert.Equal(t, ledger.Buy, fill.Trade.Side)
	assert.Equal(t, int64(10), fill.Trade.Quantity)
	assert.Equal(t, 150.0, fill.Trade.Price)

	_, err = e.PlaceOrder(ctx, order(ledger.Sell, 15))
	assert.True(t, errors.Is(err, ledger.ErrInsufficientPosition), "got %v", err)

	got, err := l.Account(aliceAAPL)
	require.NoError(t, err)
	assert.Equal(t, 8500.0, got.Balance)
	assert.Equal(t, int64(10), got.Positions)
	assert.Len(t, l.Trades(aliceAAPL), 1)

	require.Len(t, j.trades, 1)
	assert.Equal(t, fill.Trade.ID, j.trades[0].TradeID)
	assert.Equal(t, 8500.0, j.trades[0].Balance)
}

func TestPlaceOrderRejectsBadQuantityRegardlessOfState(t *testing.T) {
	for _, qty := range []int64{0, -5} {
		// no session at all
		e, _, _ := newEngine(t, 150)
		_, err := e.PlaceOrder(context.Background(), order(ledger.Buy, qty))
		assert.True(t, errors.Is(err, ErrInvalidOrder), "qty %d: %v", qty, err)

		// active session with plenty of cash
		e, l, _ := newEngine(t, 150)
		l.Open(aliceAAPL, ledger.DefaultBalance)
		_, err = e.PlaceOrder(context.Background(), order(ledger.Sell, qty))
		assert.True(t, errors.Is(err, ErrInvalidOrder), "qty %d: %v", qty, err)
		assert.Empty(t, l.Trades(aliceAAPL))
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		req  OrderRequest
		msg  string
	}{
		{"missing user", OrderRequest{Symbol: "AAPL", Side: ledger.Buy, Quantity: 1}, "user is required"},
		{"missing symbol", OrderRequest{User: "alice", Side: ledger.Buy, Quantity: 1}, "symbol is required"},
		{"bad side", OrderRequest{User: "alice", Symbol: "AAPL", Side: "hold", Quantity: 1}, "side must be one of: buy, sell"},
		{"zero qty", OrderRequest{User: "alice", Symbol: "AAPL", Side: ledger.Buy}, "quantity must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOrder))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.NoError(t, order(ledger.Buy, 1).Validate())
}

func TestPlaceOrderSessionNotFound(t *testing.T) {
	e, l, j := newEngine(t, 150)
	_, err := e.PlaceOrder(context.Background(), order(ledger.Buy, 1))
	assert.True(t, errors.Is(err, ledger.ErrSessionNotFound))
	assert.Empty(t, l.Trades(aliceAAPL))
	assert.Empty(t, j.trades)
}

func TestPlaceOrderNoPrice(t *testing.T) {
	l := ledger.New()
	e := NewEngine(l, fixedPrice{})
	l.Open(aliceAAPL, ledger.DefaultBalance)

	_, err := e.PlaceOrder(context.Background(), order(ledger.Buy, 1))
	assert.True(t, errors.Is(err, ErrNoPriceAvailable))
	assert.True(t, errors.Is(err, ErrInvalidOrder))
	assert.Equal(t, "no_price", RejectReason(err))
}

func TestPlaceOrderInsufficientFunds(t *testing.T) {
	e, l, _ := newEngine(t, 150)
	l.Open(aliceAAPL, ledger.DefaultBalance)

	_, err := e.PlaceOrder(context.Background(), order(ledger.Buy, 67))
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))

	acct, err := l.Account(aliceAAPL)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, acct.Balance)
}

func TestPlaceOrderRoundTrip(t *testing.T) {
	e, l, _ := newEngine(t, 187.31)
	l.Open(aliceAAPL, ledger.DefaultBalance)
	ctx := context.Background()

	_, err := e.PlaceOrder(ctx, order(ledger.Buy, 13))
	require.NoError(t, err)
	fill, err := e.PlaceOrder(ctx, order(ledger.Sell, 13))
	require.NoError(t, err)

	assert.Equal(t, 10000.0, fill.Account.Balance)
	assert.Equal(t, int64(0), fill.Account.Positions)
}

func TestPlaceOrderJournalFailureKeepsFill(t *testing.T) {
	e, l, j := newEngine(t, 150)
	j.err = errors.New("disk full")
	l.Open(aliceAAPL, ledger.DefaultBalance)

	fill, err := e.PlaceOrder(context.Background(), order(ledger.Buy, 1))
	require.NoError(t, err)
	assert.Equal(t, 9850.0, fill.Account.Balance)
}

func TestPlaceOrderCanceledContext(t *testing.T) {
	e, l, _ := newEngine(t, 150)
	l.Open(aliceAAPL, ledger.DefaultBalance)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.PlaceOrder(ctx, order(ledger.Buy, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, l.Trades(aliceAAPL))
}

func TestConcurrentOrdersNoLostUpdates(t *testing.T) {
	const price = 150.0
	for _, n := range []int{2, 16, 66} {
		e, l, _ := newEngine(t, price)
		l.Open(aliceAAPL, ledger.DefaultBalance)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := e.PlaceOrder(context.Background(), order(ledger.Buy, 1))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		acct, err := l.Account(aliceAAPL)
		require.NoError(t, err)
		assert.Equal(t, int64(n), acct.Positions)
		want := decimal.NewFromInt(10000).Sub(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(n))))
		assert.Equal(t, want.InexactFloat64(), acct.Balance)
	}
}

func TestConcurrentOrdersAcrossKeys(t *testing.T) {
	e, l, _ := newEngine(t, 100)
	users := []string{"alice", "bob", "carol", "dave"}
	for _, u := range users {
		l.Open(ledger.Key{User: u, Symbol: "AAPL"}, ledger.DefaultBalance)
	}

	var wg sync.WaitGroup
	for _, u := range users {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				_, err := e.PlaceOrder(context.Background(), OrderRequest{User: u, Symbol: "AAPL", Side: ledger.Buy, Quantity: 2})
				assert.NoError(t, err)
			}(u)
		}
	}
	wg.Wait()

	for _, u := range users {
		acct, err := l.Account(ledger.Key{User: u, Symbol: "AAPL"})
		require.NoError(t, err)
		assert.Equal(t, int64(40), acct.Positions)
		assert.Equal(t, 6000.0, acct.Balance)
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), q)

	for _, bad := range []string{"0", "-5", "1.5", "1e3", "ten", ""} {
		_, err := ParseQuantity(bad)
		assert.True(t, errors.Is(err, ErrInvalidOrder), "input %q", bad)
	}
}
