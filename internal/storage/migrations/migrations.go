// Package migrations bootstraps an empty book in the GnuCash sql layout.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// Result reports the schema version before and after a migration run.
type Result struct {
	PreMigrationVersion  uint
	PostMigrationVersion uint
}

// Up applies every pending migration to db. driverName is the database/sql
// driver the handle was opened with: "sqlite" or "postgres".
func Up(db *sql.DB, driverName string) (*Result, error) {
	var (
		driver database.Driver
		err    error
	)
	switch driverName {
	case "sqlite":
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case "postgres":
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("migrations: unsupported driver %q", driverName)
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: %s.WithInstance: %w", driverName, err)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: iofs.New: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("migrations: migrate.NewWithInstance: %w", err)
	}

	result := &Result{}
	result.PreMigrationVersion, _, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migrations: pre-migration version: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("migrations: up: %w", err)
	}

	result.PostMigrationVersion, _, err = m.Version()
	if err != nil {
		return nil, fmt.Errorf("migrations: post-migration version: %w", err)
	}
	return result, nil
}
