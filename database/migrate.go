package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/olenaliuby/social-media-api/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. With sqlMigrations on a postgres
// database the embedded SQL files are applied through golang-migrate;
// otherwise gorm AutoMigrate is used.
func (db *DB) Migrate(sqlMigrations bool) error {
	if sqlMigrations && db.Driver == DriverPostgres {
		if err := db.runSQLMigrations(); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := models.Migrate(db.DB); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	for _, table := range []string{"users", "profiles", "follows", "posts", "comments", "likes", "auth_tokens", "scheduled_posts"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func (db *DB) runSQLMigrations() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, _ := m.Version()
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("SQL migrations applied")
	return nil
}
