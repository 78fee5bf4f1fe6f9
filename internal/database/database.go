package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sentrywaf/waf/internal/models"
)

// Open bootstraps a PostgreSQL connection using the provided DSN and
// auto-migrates the core schema (rules, attack logs, blocked IPs, and the
// reserved-but-unused rate-limit table).
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies AutoMigrate for every model owned by the core.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Rule{},
		&models.AttackLog{},
		&models.BlockedIP{},
		&models.IPRateLimit{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping verifies the database connection is reachable, used by the /ready probe.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
