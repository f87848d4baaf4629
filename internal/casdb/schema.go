package casdb

func SchemaSQL() string {
	return `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    login         TEXT    NOT NULL UNIQUE CHECK (length(login) > 0),
    password_hash BLOB    NOT NULL,
    attributes    TEXT    NOT NULL DEFAULT '{}',
    created_at    TEXT    NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS options (
    name  TEXT PRIMARY KEY CHECK (length(name) > 0),
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
    key        TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    expires_at REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_expires_at ON tickets (expires_at);
`
}
