// Package db opens the configured database and prepares its schema
package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"lumo/task-api/internal/model"
	"lumo/task-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table gorm migrates.
var Models = []any{model.User{}, model.List{}, model.Task{}}

// OpenSQLite opens the SQLite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if util.InContainer() && path != ":memory:" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", path)
		}
	}

	return open(sqlite.Open(sqliteDSN(path)))
}

// sqliteDSN makes writers wait for the lock instead of failing with
// "database is locked". Transactions take the write lock up front since a
// read-then-write transaction can't upgrade while another one holds it.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + "_busy_timeout=5000&_txlock=immediate"
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return open(postgres.Open(dsn))
}

func open(d gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
