package db

import (
	"context"
	"fmt"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"
)

const (
	DialectSQLite = "sqlite"
	DialectMySQL  = "mysql"
)

// StopGeohashPrecision is the length of the geohash stored with each stop
// (a cell of roughly 150 m).
const StopGeohashPrecision = 7

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS buses (
		id TEXT PRIMARY KEY,
		brand TEXT NOT NULL,
		bus_model TEXT NOT NULL,
		register_number TEXT NOT NULL UNIQUE,
		assembly_date TIMESTAMP NOT NULL,
		last_repair_date TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		surname TEXT NOT NULL,
		patronymic TEXT NOT NULL,
		birth_date TIMESTAMP NOT NULL,
		passport_series TEXT NOT NULL UNIQUE,
		snils TEXT NOT NULL UNIQUE,
		license_series TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS bus_stops (
		id TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		long REAL NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS routes_drivers (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		driver_id TEXT NOT NULL REFERENCES drivers(id) ON DELETE CASCADE,
		PRIMARY KEY (route_id, driver_id)
	)`,
	`CREATE TABLE IF NOT EXISTS routes_bus_stops (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		bus_stop_id TEXT NOT NULL REFERENCES bus_stops(id) ON DELETE CASCADE,
		PRIMARY KEY (route_id, bus_stop_id)
	)`,
	`CREATE TABLE IF NOT EXISTS routes_buses (
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		bus_id TEXT NOT NULL REFERENCES buses(id) ON DELETE CASCADE,
		PRIMARY KEY (route_id, bus_id)
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS buses (
		id VARCHAR(36) PRIMARY KEY,
		brand VARCHAR(255) NOT NULL,
		bus_model VARCHAR(255) NOT NULL,
		register_number VARCHAR(64) NOT NULL UNIQUE,
		assembly_date DATETIME NOT NULL,
		last_repair_date DATETIME NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		surname VARCHAR(255) NOT NULL,
		patronymic VARCHAR(255) NOT NULL,
		birth_date DATETIME NOT NULL,
		passport_series VARCHAR(64) NOT NULL UNIQUE,
		snils VARCHAR(64) NOT NULL UNIQUE,
		license_series VARCHAR(64) NOT NULL UNIQUE
	) CHARACTER SET utf8mb4`,
	"CREATE TABLE IF NOT EXISTS bus_stops (" +
		"id VARCHAR(36) PRIMARY KEY, " +
		"lat DOUBLE NOT NULL, " +
		"`long` DOUBLE NOT NULL, " +
		"name VARCHAR(255) NOT NULL" +
		") CHARACTER SET utf8mb4",
	`CREATE TABLE IF NOT EXISTS routes (
		id VARCHAR(36) PRIMARY KEY,
		number VARCHAR(64) NOT NULL UNIQUE
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS routes_drivers (
		route_id VARCHAR(36) NOT NULL,
		driver_id VARCHAR(36) NOT NULL,
		PRIMARY KEY (route_id, driver_id),
		FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
		FOREIGN KEY (driver_id) REFERENCES drivers(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS routes_bus_stops (
		route_id VARCHAR(36) NOT NULL,
		bus_stop_id VARCHAR(36) NOT NULL,
		PRIMARY KEY (route_id, bus_stop_id),
		FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
		FOREIGN KEY (bus_stop_id) REFERENCES bus_stops(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS routes_buses (
		route_id VARCHAR(36) NOT NULL,
		bus_id VARCHAR(36) NOT NULL,
		PRIMARY KEY (route_id, bus_id),
		FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
		FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE CASCADE
	)`,
}

// addedColumns are columns that databases created by older builds lack.
var addedColumns = []struct {
	table, column, sqliteType, mysqlType string
}{
	{"bus_stops", "geohash", "TEXT NOT NULL DEFAULT ''", "VARCHAR(12) NOT NULL DEFAULT ''"},
	{"routes_drivers", "position", "INTEGER NOT NULL DEFAULT 0", "INT NOT NULL DEFAULT 0"},
	{"routes_bus_stops", "position", "INTEGER NOT NULL DEFAULT 0", "INT NOT NULL DEFAULT 0"},
	{"routes_buses", "position", "INTEGER NOT NULL DEFAULT 0", "INT NOT NULL DEFAULT 0"},
}

// linkTables are the route association tables and the column pointing at
// the associated record.
var linkTables = []struct{ table, ref string }{
	{"routes_drivers", "driver_id"},
	{"routes_bus_stops", "bus_stop_id"},
	{"routes_buses", "bus_id"},
}

// Migrate creates missing tables and columns and back-fills derived values
// for rows written by older builds. It is safe to run on every start.
func Migrate(ctx context.Context, q Querier, dialect string) error {
	var stmts []string
	switch dialect {
	case DialectSQLite:
		stmts = sqliteSchema
	case DialectMySQL:
		stmts = mysqlSchema
	default:
		return fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}

	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	for _, c := range addedColumns {
		if HasColumn(ctx, q, dialect, c.table, c.column) {
			continue
		}
		typ := c.sqliteType
		if dialect == DialectMySQL {
			typ = c.mysqlType
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, typ)
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: add %s.%s: %w", c.table, c.column, err)
		}
		zap.L().Info("column added", zap.String("table", c.table), zap.String("column", c.column))
	}

	if err := backfillGeohash(ctx, q, dialect); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, l := range linkTables {
		if err := backfillPositions(ctx, q, dialect, l.table, l.ref); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// backfillGeohash computes the cell of stops stored without one.
func backfillGeohash(ctx context.Context, q Querier, dialect string) error {
	rows, err := q.QueryContext(ctx, `SELECT id, lat, `+Ident(dialect, "long")+` FROM bus_stops WHERE geohash = ''`)
	if err != nil {
		return fmt.Errorf("select stops without geohash: %w", err)
	}
	type pending struct {
		id      string
		lat, lo float64
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.lat, &p.lo); err != nil {
			rows.Close()
			return fmt.Errorf("scan stop: %w", err)
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stops: %w", err)
	}

	for _, p := range todo {
		hash := geohash.EncodeWithPrecision(p.lat, p.lo, StopGeohashPrecision)
		if _, err := q.ExecContext(ctx, `UPDATE bus_stops SET geohash = ? WHERE id = ?`, hash, p.id); err != nil {
			return fmt.Errorf("update stop geohash: %w", err)
		}
	}
	if len(todo) > 0 {
		zap.L().Info("stop geohash back-filled", zap.Int("rows", len(todo)))
	}
	return nil
}

// backfillPositions numbers association rows stored without a position.
// Numbering continues after the route's highest position, in insertion
// order on SQLite (rowid) and by referenced id on MySQL.
func backfillPositions(ctx context.Context, q Querier, dialect, table, ref string) error {
	order := "rowid"
	if dialect == DialectMySQL {
		order = ref
	}
	rows, err := q.QueryContext(ctx, `
		SELECT route_id, `+ref+`
		FROM `+table+`
		WHERE position = 0
		ORDER BY route_id, `+order)
	if err != nil {
		return fmt.Errorf("select %s without position: %w", table, err)
	}
	type pending struct{ route, ref string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.route, &p.ref); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: %w", table, err)
		}
		todo = append(todo, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", table, err)
	}

	next := map[string]int{}
	for _, p := range todo {
		pos, ok := next[p.route]
		if !ok {
			if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM `+table+` WHERE route_id = ?`, p.route).Scan(&pos); err != nil {
				return fmt.Errorf("max position %s: %w", table, err)
			}
		}
		pos++
		next[p.route] = pos
		if _, err := q.ExecContext(ctx, `UPDATE `+table+` SET position = ? WHERE route_id = ? AND `+ref+` = ?`, pos, p.route, p.ref); err != nil {
			return fmt.Errorf("update %s position: %w", table, err)
		}
	}
	if len(todo) > 0 {
		zap.L().Info("association positions back-filled", zap.String("table", table), zap.Int("rows", len(todo)))
	}
	return nil
}
