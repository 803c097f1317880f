package journal

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, user, symbol, side, quantity, price, balance, positions, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.User, t.Symbol, t.Side, t.Quantity,
		t.Price, t.Balance, t.Positions, t.Time.UTC(),
	)
	return err
}

func (j *SQLite) RecordAccount(a AccountSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`
		INSERT INTO accounts
		(time, user, symbol, balance, positions, event)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Time.UTC(), a.User, a.Symbol, a.Balance, a.Positions, a.Event,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
