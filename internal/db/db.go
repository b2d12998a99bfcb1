package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

// Schema statements, applied together by InitializeDB.
const (
	userSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);`

	postSchema = `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		createdDate TEXT,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		authorid INTEGER,
		FOREIGN KEY (authorid) REFERENCES users(id)
	);`
)

// DSN builds the driver connection string for the database file at path. Every pooled
// connection gets foreign keys, WAL journaling and a busy timeout.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	return path + "?" + q.Encode()
}

// Open opens the SQLite database at path and checks that it is reachable.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database at %s: %w", path, err)
	}
	slog.InfoContext(ctx, "Connected to database", "db.path", path)
	return pool, nil
}

// InitializeDB creates the users and posts tables if they do not exist. Both statements
// run in one transaction so a failure leaves neither table half-applied.
func InitializeDB(ctx context.Context, db *sqlx.DB) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, userSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if _, err = tx.ExecContext(ctx, postSchema); err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}

	slog.InfoContext(ctx, "DB schema verified.")
	return nil
}
