package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "ux_supplier_orders_order_supplier"}

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation without constraint filter")
	}
	if !IsUniqueViolation(err, "ux_supplier_orders_order_supplier") {
		t.Fatal("expected unique violation with matching constraint")
	}
	if IsUniqueViolation(err, "ux_suppliers_code") {
		t.Fatal("expected mismatch for different constraint")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "ux_suppliers_code"}
	if !IsUniqueViolation(err, "ux_suppliers_code") {
		t.Fatal("expected pq unique violation")
	}
}

func TestIsUniqueViolationWrapped(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505"}
	wrapped := fmt.Errorf("create supplier: %w", inner)
	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected unique violation through wrapping")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: suppliers.code")
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite message match")
	}
}

func TestIsUniqueViolationOtherCodes(t *testing.T) {
	err := &pgconn.PgError{Code: "23503"}
	if IsUniqueViolation(err, "") {
		t.Fatal("foreign key violation must not count as unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not count")
	}
}
