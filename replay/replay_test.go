package replay

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/session"
	"github.com/rustyeddy/tradereflex/sim"
)

type fixture struct {
	book     *market.PriceBook
	ledger   *ledger.Ledger
	sessions *session.Manager
	engine   *sim.Engine
}

func newFixture() fixture {
	l := ledger.New()
	book := market.NewPriceBook()
	return fixture{
		book:     book,
		ledger:   l,
		sessions: session.NewManager(l, market.NewSymbols("AAPL", "TSLA")),
		engine:   sim.NewEngine(l, book),
	}
}

func (f fixture) run(t *testing.T, script string, opts Options) (Result, error) {
	t.Helper()
	r := NewRunner(f.book, f.sessions, f.engine, opts)
	return r.Run(context.Background(), strings.NewReader(script))
}

func TestRunBuyAndSell(t *testing.T) {
	f := newFixture()
	script := `time,symbol,open,high,low,close,volume,event,arg1
2024-01-02T14:30:00Z,AAPL,100,101,99,100,1000,START,
2024-01-02T14:31:00Z,AAPL,100,102,100,101,1200,BUY,10
2024-01-02T14:32:00Z,AAPL,101,106,101,105,900,,
2024-01-02T14:33:00Z,aapl,105,111,104,110,800,SELL,4
`
	res, err := f.run(t, script, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Bars)
	assert.Empty(t, res.Rejected)
	require.Len(t, res.Fills, 2)
	assert.Equal(t, 101.0, res.Fills[0].Trade.Price)
	assert.Equal(t, 110.0, res.Fills[1].Trade.Price)

	acct, err := f.sessions.Account(DefaultUser, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(6), acct.Positions)
	assert.InDelta(t, 10000-1010+440, acct.Balance, 1e-9)

	s := f.book.Series("AAPL")
	require.Equal(t, 4, s.Len())
	last, _ := s.Last()
	assert.Equal(t, int64(1704205980), last.Timestamp)
}

func TestRunEventFirstFillsAtPreviousClose(t *testing.T) {
	f := newFixture()
	script := `1704205800,AAPL,100,101,99,100,,START
1704205860,AAPL,100,102,100,101,,BUY,1
`
	res, err := f.run(t, script, Options{EventFirst: true, User: "alice"})
	require.NoError(t, err)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, 100.0, res.Fills[0].Trade.Price)
	assert.Equal(t, "alice", res.Fills[0].Account.User)
}

func TestRunCollectsRejections(t *testing.T) {
	f := newFixture()
	script := `time,symbol,open,high,low,close,volume,event,arg1
2024-01-02T14:30:00Z,AAPL,100,101,99,100,0,BUY,1
2024-01-02T14:31:00Z,AAPL,100,101,99,100,0,START,
2024-01-02T14:32:00Z,AAPL,100,101,99,100,0,SELL,1
2024-01-02T14:33:00Z,AAPL,100,101,99,100,0,BUY,1000
2024-01-02T14:34:00Z,AAPL,100,101,99,100,0,BUY,2
`
	res, err := f.run(t, script, Options{})
	require.NoError(t, err)

	require.Len(t, res.Rejected, 3)
	assert.Equal(t, 2, res.Rejected[0].Line)
	assert.ErrorIs(t, res.Rejected[0].Err, ledger.ErrSessionNotFound)
	assert.ErrorIs(t, res.Rejected[1].Err, ledger.ErrInsufficientPosition)
	assert.ErrorIs(t, res.Rejected[2].Err, ledger.ErrInsufficientFunds)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, int64(2), res.Fills[0].Account.Positions)
}

func TestRunStrictStopsOnRejection(t *testing.T) {
	f := newFixture()
	script := `2024-01-02T14:30:00Z,AAPL,100,101,99,100,0,BUY,1
2024-01-02T14:31:00Z,AAPL,100,101,99,100,0,START,
`
	res, err := f.run(t, script, Options{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrSessionNotFound)
	assert.Contains(t, err.Error(), "line 1")
	assert.Equal(t, 1, res.Bars)
}

func TestRunMalformed(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"short row", "2024-01-02T14:30:00Z,AAPL,100\n", "at least 6 columns"},
		{"bad time", "yesterday,AAPL,1,1,1,1\n", "bad time"},
		{"bad price", "2024-01-02T14:30:00Z,AAPL,1,x,1,1\n", "bad price"},
		{"bad volume", "2024-01-02T14:30:00Z,AAPL,1,1,1,1,lots\n", "bad volume"},
		{"empty symbol", "2024-01-02T14:30:00Z, ,1,1,1,1\n", "empty symbol"},
		{"unknown event", "2024-01-02T14:30:00Z,AAPL,1,1,1,1,0,HOLD\n", "unknown event"},
		{"bad qty", "2024-01-02T14:30:00Z,AAPL,1,1,1,1,0,BUY,1.5\n", "not an integer"},
		{"unknown symbol", "2024-01-02T14:30:00Z,MSFT,1,1,1,1,0,START\n", "unknown symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture().run(t, tt.script, Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(f.book, f.sessions, f.engine, Options{})
	_, err := r.Run(ctx, strings.NewReader("2024-01-02T14:30:00Z,AAPL,1,1,1,1\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, f.book.Series("AAPL"))
}
