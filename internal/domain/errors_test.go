package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestErrorHelpersUnwrap(t *testing.T) {
	nf := fmt.Errorf("load: %w", NotFoundError{Resource: "Bus", ID: "7", Err: sql.ErrNoRows})
	if !IsNotFound(nf) || !errors.Is(nf, sql.ErrNoRows) {
		t.Fatalf("not found helpers failed for %v", nf)
	}
	if nf.Error() != "load: Bus not found" {
		t.Fatalf("message = %q", nf.Error())
	}

	if err := Required("Brand"); !IsValidation(err) || err.Error() != "Brand: cant be empty" {
		t.Fatalf("required = %v", err)
	}
	if err := (ConflictError{Resource: "Bus", Msg: "register number X already exists"}); !IsConflict(err) {
		t.Fatal("conflict helper failed")
	}
	if IsInternal(Required("x")) || !IsInternal(InternalError{Msg: "boom"}) {
		t.Fatal("internal helper failed")
	}
}

func TestEntityValid(t *testing.T) {
	for _, e := range Entities {
		if !e.Valid() {
			t.Fatalf("%s should be valid", e)
		}
	}
	if Entity("ticket").Valid() {
		t.Fatal("ticket should not be valid")
	}
}
