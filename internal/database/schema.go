package database

// The relational schema is owned by the fund's back office; the
// statements below only bootstrap an empty database (local development
// and tests) and must stay in sync with the canonical definition.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker   TEXT NOT NULL,
		category TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS returns (
		asset_id INTEGER NOT NULL,
		date     DATE NOT NULL,
		value    REAL NOT NULL,
		FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_returns_asset_date ON returns(asset_id, date);`,
	`CREATE TABLE IF NOT EXISTS portfolios (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		profile    TEXT NOT NULL CHECK(profile IN ('low_risk', 'low_turnover', 'high_yield_equity_only')),
		created_at DATE NOT NULL,
		holdings   TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_portfolios_profile_date ON portfolios(profile, created_at);`,
	`CREATE TABLE IF NOT EXISTS deals (
		id                     INTEGER PRIMARY KEY AUTOINCREMENT,
		date                   DATE NOT NULL UNIQUE,
		low_risk               TEXT,
		low_turnover           TEXT,
		high_yield_equity_only TEXT
	);`,
}

// EnsureSchema creates any missing tables and indexes.
func (db *DB) EnsureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
