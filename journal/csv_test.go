package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSV, string, string) {
	t.Helper()
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	accountsPath := filepath.Join(dir, "accounts.csv")

	j, err := NewCSV(tradesPath, accountsPath)
	require.NoError(t, err)
	return j, tradesPath, accountsPath
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, tradesPath, accountsPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	trades := readRows(t, tradesPath)
	require.Len(t, trades, 1)
	assert.Equal(t, []string{"trade_id", "user", "symbol", "side", "quantity", "price", "balance", "positions", "time"}, trades[0])

	accounts := readRows(t, accountsPath)
	require.Len(t, accounts, 1)
	assert.Equal(t, []string{"time", "user", "symbol", "balance", "positions", "event"}, accounts[0])
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, tradesPath, _ := newTestCSV(t)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := j.RecordTrade(TradeRecord{
		TradeID:   "T1",
		User:      "alice",
		Symbol:    "AAPL",
		Side:      "buy",
		Quantity:  10,
		Price:     150.1234567,
		Balance:   8498.765433,
		Positions: 10,
		Time:      ts,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, tradesPath)
	require.Len(t, rows, 2)
	want := []string{
		"T1",
		"alice",
		"AAPL",
		"buy",
		"10",
		"150.123457",
		"8498.765433",
		"10",
		ts.Format(time.RFC3339Nano),
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalRecordAccount(t *testing.T) {
	t.Parallel()

	j, _, accountsPath := newTestCSV(t)
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	err := j.RecordAccount(AccountSnapshot{
		Time:      ts,
		User:      "alice",
		Symbol:    "AAPL",
		Balance:   10000,
		Positions: 0,
		Event:     "session_start",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, accountsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{ts.Format(time.RFC3339Nano), "alice", "AAPL", "10000.000000", "0", "session_start"}, rows[1])
}

func TestNopJournal(t *testing.T) {
	var j Journal = Nop{}
	assert.NoError(t, j.RecordTrade(TradeRecord{}))
	assert.NoError(t, j.RecordAccount(AccountSnapshot{}))
	assert.NoError(t, j.Close())
}
