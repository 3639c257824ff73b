// Package testinfra provides database fixtures for package tests.
package testinfra

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"animehub/pkg/database"
)

// NewSQLite opens a migrated SQLite database in a temp dir that is closed
// when the test ends.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver:   database.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
