package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	"github.com/d1ma11/deposit-service/internal/domain/request"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// zapWriter routes gorm's SQL log through zap.
type zapWriter struct{ s *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...any) { w.s.Infof(format, args...) }

// ParseLogLevel maps silent|error|warn|info to a gorm level; anything else is warn.
func ParseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func gormConfig(log *zap.Logger, level logger.LogLevel) *gorm.Config {
	if log == nil {
		log = zap.NewNop()
	}
	return &gorm.Config{
		Logger: logger.New(zapWriter{s: log.Named("gorm").Sugar()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		// OpenGormWithDialector pings after tuning the pool
		DisableAutomaticPing: true,
	}
}

func OpenGorm(dsn string, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), log, level)
}

// OpenGormWithDialector opens, tunes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dial, gormConfig(log, level))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the requests, request_statuses and deposits tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&request.Request{}, &request.StatusEntry{}, &deposit.Deposit{})
}
