package mysql

import (
	"testing"

	depositDomain "github.com/d1ma11/deposit-service/internal/domain/deposit"
	requestDomain "github.com/d1ma11/deposit-service/internal/domain/request"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the production schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection so every query sees the same :memory: database
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&requestDomain.Request{}, &requestDomain.StatusEntry{}, &depositDomain.Deposit{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
