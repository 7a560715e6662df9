// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"busmanager/internal/config"
	"busmanager/internal/db"
)

func Open(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := config.Open(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
