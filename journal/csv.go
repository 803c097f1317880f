package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

type CSV struct {
	mu       sync.Mutex
	trades   *csv.Writer
	accounts *csv.Writer
	tf, af   *os.File
}

var (
	tradeHeader   = []string{"trade_id", "user", "symbol", "side", "quantity", "price", "balance", "positions", "time"}
	accountHeader = []string{"time", "user", "symbol", "balance", "positions", "event"}
)

func NewCSV(tradesPath, accountsPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	af, err := os.Create(accountsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSV{trades: csv.NewWriter(tf), accounts: csv.NewWriter(af), tf: tf, af: af}
	if err := j.write(j.trades, tradeHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.write(j.accounts, accountHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write(j.trades, []string{
		t.TradeID,
		t.User,
		t.Symbol,
		t.Side,
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Balance),
		strconv.FormatInt(t.Positions, 10),
		t.Time.UTC().Format(time.RFC3339Nano),
	})
}

func (j *CSV) RecordAccount(a AccountSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.write(j.accounts, []string{
		a.Time.UTC().Format(time.RFC3339Nano),
		a.User,
		a.Symbol,
		f(a.Balance),
		strconv.FormatInt(a.Positions, 10),
		a.Event,
	})
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades.Flush()
	j.accounts.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	if err := j.accounts.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.af.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
