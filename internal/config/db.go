package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"busmanager/internal/db"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = db.DialectSQLite
	DriverMySQL  = db.DialectMySQL
)

var (
	DB      *sql.DB
	Dialect string
	dbMu    sync.Mutex
)

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(e Env) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}

	db, err := Open(e.DBDriver, e.DBDSN)
	if err != nil {
		return nil, err
	}

	DB = db
	Dialect = e.DBDriver
	zap.L().Info("database connected", zap.String("driver", e.DBDriver))
	return DB, nil
}

// Open opens and pings a pool without touching the shared handle.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverMySQL:
		dsn = mysqlDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer; SQLite serializes anyway and this avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func EnsureDB(ctx context.Context) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return fmt.Errorf("database is not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "busmanager.db"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func mysqlDSN(dsn string) string {
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/bus_manager"
	}
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
}
