package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "vendors_vendor_code_key"}
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"plain error", errors.New("boom"), "", false},
		{"any constraint", dup, "", true},
		{"matching constraint", dup, "vendors_vendor_code_key", true},
		{"other constraint", dup, "orders_pkey", false},
		{"wrapped", fmt.Errorf("insert vendor: %w", dup), "vendors_vendor_code_key", true},
		{"fk violation", &pgconn.PgError{Code: "23503"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Errorf("IsUniqueViolation(%v, %q) = %v, want %v", tt.err, tt.constraint, got, tt.want)
			}
		})
	}
}
