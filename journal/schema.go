package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	user TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL,
	positions INTEGER NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_key ON trades(user, symbol, time);

CREATE TABLE IF NOT EXISTS accounts (
	time DATETIME NOT NULL,
	user TEXT NOT NULL,
	symbol TEXT NOT NULL,
	balance REAL NOT NULL,
	positions INTEGER NOT NULL,
	event TEXT NOT NULL
);
`
