// Command db_migrations creates an empty book, or brings the schema of an
// existing one up to date, at the location the server is configured with.
// DB_USER and DB_PASSWORD supply postgres credentials.
package main

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	server_config "github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/storage"
	"github.com/carson-networks/book-server/internal/storage/migrations"
)

func main() {
	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	if env.DBDriver == server_config.DriverSqlite {
		if err := touch(env.DBName); err != nil {
			logrus.WithError(err).Fatal("touch")
			return
		}
	}

	uri, err := env.DBURI(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"))
	if err != nil {
		logrus.WithError(err).Fatal("DBURI")
		return
	}
	driverName, dsn, err := storage.DataSource(uri)
	if err != nil {
		logrus.WithError(err).Fatal("storage.DataSource")
		return
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		logrus.WithError(err).Fatal("sql.Open")
		return
	}
	defer db.Close()

	result, err := migrations.Up(db, driverName)
	if err != nil {
		logrus.WithError(err).Fatal("migrations.Up")
		return
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreMigrationVersion,
		"postMigrationVersion": result.PostMigrationVersion,
	}).Info("Migration status")
}

// touch creates the sqlite file and its directory when missing.
func touch(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
