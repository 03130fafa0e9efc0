// Package database opens the per-module SQLite stores.
package database

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite file at path and migrates the given models.
// With debug set every statement is logged.
func Open(path string, debug bool, models ...any) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return db, nil
}

// OpenMemory returns a migrated in-memory database pinned to a single
// connection, so every query sees the same data.
func OpenMemory(models ...any) (*gorm.DB, error) {
	db, err := Open(":memory:", false, models...)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Health pings the database and reports the result. details is merged into
// the healthy status.
func Health(ctx context.Context, db *gorm.DB, path string, details map[string]any) mono.HealthStatus {
	if db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	all := map[string]any{
		"driver": "sqlite",
		"path":   path,
	}
	for k, v := range details {
		all[k] = v
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: all,
	}
}
