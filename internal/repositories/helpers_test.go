package repositories_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/assadsharif/chatkit-widget-implementation/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens the database named by TEST_DATABASE_DSN and migrates the
// schema. Tests that need Postgres semantics (row locks, unique index
// races) skip when it is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database-backed tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)
	db.Exec(`CREATE EXTENSION IF NOT EXISTS "citext"`)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	t.Cleanup(func() {
		for _, m := range models.AllModels() {
			db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m)
		}
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// uniqueToken avoids collisions across tests sharing one database.
func uniqueToken(t *testing.T) string {
	t.Helper()
	tok, err := models.GenerateSecureToken(16)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return fmt.Sprintf("%s-%s", t.Name(), tok)
}
