// Package db opens the relational store and migrates its schema
package db

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/pkg/util"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database selected by driver ("sqlite" or "postgres") and
// migrates every table the application needs.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		// Inside docker the sqlite file has to come from a volume
		if err := util.RequireMounted(dsn, "SQLite database file"); err != nil {
			return nil, err
		}

		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}

		dialector = sqlite.Open(dsn + sep + "_foreign_keys=on")
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(model.User{}, model.File{}, model.VerificationToken{}, model.Session{}, model.Setting{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
