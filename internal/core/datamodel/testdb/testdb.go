// Package testdb opens an in-memory SQLite database carrying the full gorm schema, for repository and handler tests.
package testdb

import (
	"fmt"

	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh database. A single connection is kept so every query sees the same in-memory schema.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.SetupJoinTable(&userDatamodel.User{}, "Roles", &userDatamodel.UserRole{}); err != nil {
		return nil, fmt.Errorf("setup join table: %w", err)
	}

	err = db.AutoMigrate(
		&userDatamodel.Department{},
		&userDatamodel.Position{},
		&userDatamodel.Role{},
		&userDatamodel.User{},
		&userDatamodel.UserRole{},
		&attendanceDatamodel.Record{},
		&leaveDatamodel.Application{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
