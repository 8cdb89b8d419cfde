package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/liyanaidrs/CPC357-Assign2/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the production
// schema. The connection is closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Shared-cache URI keeps the database alive for the lifetime of the pool.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)",
		name,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn, closed at test end.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(w.Close)
	return w
}

// seedIdentity inserts a registry row. state may be nil to store NULL.
func seedIdentity(t *testing.T, conn *sql.DB, identifier, name string, state *string) {
	t.Helper()

	var st any
	if state != nil {
		st = *state
	}
	if _, err := conn.Exec(
		`INSERT INTO identities(identifier, display_name, account_state) VALUES (?, ?, ?)`,
		identifier, name, st,
	); err != nil {
		t.Fatalf("seedIdentity %s: %v", identifier, err)
	}
}

func strPtr(s string) *string { return &s }

func dbConfig(t *testing.T) db.Config {
	t.Helper()
	return db.Config{Path: t.TempDir() + "/attendance.db"}
}
