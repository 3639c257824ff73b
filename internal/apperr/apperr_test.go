package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("Category %s not found", "Unknown"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped NotFound does not match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("NotFound matched ErrConflict")
	}
	if got := Message(err); got != "Category Unknown not found" {
		t.Fatalf("Message = %q", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", Conflict("dup"), http.StatusBadRequest},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("Status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	if got := Message(errors.New("sql: connection refused")); got != "internal server error" {
		t.Fatalf("Message = %q", got)
	}
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, false},
		{"mysql 1062", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1045}, false},
		{"wrapped", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicate(tt.err); got != tt.want {
				t.Fatalf("IsDuplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromDB(t *testing.T) {
	if FromDB(nil, "op", "dup") != nil {
		t.Fatal("nil error not preserved")
	}
	if err := FromDB(gorm.ErrRecordNotFound, "get anime", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record not found -> %v", err)
	}
	err := FromDB(gorm.ErrDuplicatedKey, "create anime", "An anime with that title already exists")
	if !errors.Is(err, ErrConflict) || Message(err) != "An anime with that title already exists" {
		t.Fatalf("duplicate -> %v", err)
	}

	cause := errors.New("disk I/O error")
	err = FromDB(cause, "save anime", "dup")
	if !errors.Is(err, cause) || Status(err) != http.StatusInternalServerError {
		t.Fatalf("other -> %v", err)
	}
}
