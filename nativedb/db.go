package nativedb

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the native-function database at dsn (a file path, or
// ":memory:") and migrates its schema. Adapted from termfx-morfx's
// db.Connect; the libsql/Turso remote-URL branch is dropped along with that
// driver (not part of this module's dependency set — see DESIGN.md), leaving
// the plain-file/in-memory SQLite path.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "nativedb: create database directory")
			}
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, errors.Wrap(err, "nativedb: connect")
	}

	if err := Migrate(db); err != nil {
		return nil, errors.Wrap(err, "nativedb: migrate")
	}
	return db, nil
}

// Migrate creates or updates the natives table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Native{})
}
