package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"busmanager/internal/utils"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Time scans timestamp columns from either driver: MySQL with parseTime
// hands back time.Time, SQLite may hand back text.
type Time struct {
	time.Time
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case time.Time:
		t.Time = v.UTC()
	case string:
		parsed, err := utils.ParseStoredTime(v)
		if err != nil {
			return err
		}
		t.Time = parsed
	case []byte:
		parsed, err := utils.ParseStoredTime(string(v))
		if err != nil {
			return err
		}
		t.Time = parsed
	default:
		return fmt.Errorf("cannot scan %T into db.Time", src)
	}
	return nil
}

func (t Time) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}

// IsUniqueViolation reports duplicate-key failures from MySQL (1062) or
// SQLite (UNIQUE / PRIMARY KEY constraint).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func HasColumn(ctx context.Context, q Querier, dialect, table, column string) bool {
	var name sql.NullString
	var err error
	if dialect == DialectSQLite {
		err = q.QueryRowContext(ctx, `SELECT name FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&name)
	} else {
		err = q.QueryRowContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = DATABASE()
			  AND table_name = ?
			  AND column_name = ?
			LIMIT 1
		`, table, column).Scan(&name)
	}
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// Ident quotes a column name that collides with a keyword in one of the
// dialects (bus_stops.long is reserved in MySQL).
func Ident(dialect, name string) string {
	if dialect == DialectMySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}
