package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestIdent(t *testing.T) {
	if got := Ident(DialectMySQL, "long"); got != "`long`" {
		t.Fatalf("mysql = %s", got)
	}
	if got := Ident(DialectSQLite, "long"); got != `"long"` {
		t.Fatalf("sqlite = %s", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	if !IsUniqueViolation(dup) {
		t.Fatal("mysql 1062 should be a unique violation")
	}
	if IsUniqueViolation(&mysql.MySQLError{Number: 1452}) {
		t.Fatal("foreign key failure is not a unique violation")
	}
	if IsUniqueViolation(nil) || IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain errors are not unique violations")
	}
}

func TestTimeScan(t *testing.T) {
	var v Time
	if err := v.Scan("2024-05-09"); err != nil {
		t.Fatalf("scan text: %v", err)
	}
	if !v.Equal(time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", v.Time)
	}
	if err := v.Scan([]byte("2024-05-10T00:00:00Z")); err != nil || v.Day() != 10 {
		t.Fatalf("scan bytes: %v %v", v.Time, err)
	}
	if err := v.Scan(nil); err != nil || !v.IsZero() {
		t.Fatalf("scan nil: %v %v", v.Time, err)
	}
	if err := v.Scan(42); err == nil {
		t.Fatal("expected error for int")
	}
}
