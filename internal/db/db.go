// Package db opens the host's embedded SQLite store.
//
// WAL mode is enabled on Open so that kitchen reads never block order
// writes and vice versa — the gateway serves both concurrently.
package db

import (
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver. No CGO, so the host binary
	// cross-compiles for whatever device runs the register.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// order_items carries denormalized product_name/price_at_sale snapshots so
// deleting a product never corrupts historical orders. Deleting an order
// cascades to its items.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL,
    price        INTEGER NOT NULL,
    image_uri    TEXT,
    is_available INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS orders (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp    INTEGER NOT NULL,
    total_amount INTEGER NOT NULL,
    status       TEXT    NOT NULL,
    random_id    TEXT,
    display_id   INTEGER NOT NULL DEFAULT 0,
    is_takeout   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS order_items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id      INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id    INTEGER NOT NULL,
    product_name  TEXT    NOT NULL,
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    price_at_sale INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status    ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_timestamp ON orders(timestamp);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS print_jobs (
    id             TEXT    PRIMARY KEY,
    timestamp      INTEGER NOT NULL,
    device_address TEXT    NOT NULL,
    payload        TEXT    NOT NULL
);
`

// Open connects to the SQLite database at path, applies pragmas and the
// schema, and returns the handle.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return conn, nil
}
