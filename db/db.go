// Package db opens the relational database and keeps its schema current.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

const DefaultDriver = "sqlite"

const DefaultDSN = "./yatube.db?_pragma=foreign_keys(1)"

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to dataSourceName. Only sqlite is supported for now.
func Open(driverName, dataSourceName string) (*sql.DB, error) {
	if driverName == "" {
		driverName = DefaultDriver
	}
	if driverName != DefaultDriver {
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}
	if dataSourceName == "" {
		dataSourceName = DefaultDSN
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	return db, nil
}

// Migrate applies every pending up migration. An already current schema
// is not an error.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	var driver database.Driver
	driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DefaultDriver, driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// OpenTemp returns a migrated database stored under dir.
func OpenTemp(dir string) (*sql.DB, error) {
	db, err := Open(DefaultDriver, "file:"+dir+"/yatube-test.db?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
