// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"gorm.io/gorm"

	"oneps/internal/core/database"
	"oneps/internal/repo"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
