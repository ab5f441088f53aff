package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-order-backend/internal/domain"
	"github.com/tbourn/go-order-backend/internal/store"
)

// newServiceDB opens a throwaway sqlite database with the full schema.
// Shared by every test file in this package.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newQueue enables the feature for a tenant and returns the base queue,
// complete with its default category.
func newQueue(t *testing.T, db *gorm.DB, tenantID, masterID string) *domain.Repo {
	t.Helper()

	r, err := NewGroupService(db).Enable(context.Background(), tenantID, masterID)
	if err != nil {
		t.Fatalf("Enable(%s): %v", tenantID, err)
	}
	return r
}
