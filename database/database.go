package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sqliteDriverName is go-sqlite3 with LOWER replaced by a Unicode-aware
// version; the builtin only folds ASCII.
const sqliteDriverName = "sqlite3_unicode"

var registerSQLite sync.Once

func sqliteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: withForeignKeys(dsn)})
}

type DB struct {
	*gorm.DB
	Driver string
}

// New opens the database for driver and dsn. Postgres connections are
// retried a few times so the API can start alongside its database container.
func New(driver, dsn string, debug bool) (*DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqliteDialector(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	var gormDB *gorm.DB
	var err error
	for attempt := 1; attempt <= 10; attempt++ {
		gormDB, err = gorm.Open(dialector, cfg)
		if err == nil || driver != DriverPostgres {
			break
		}
		logrus.WithError(err).WithField("attempt", attempt).Warn("Retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: gormDB, Driver: driver}, nil
}

// withForeignKeys turns on FK enforcement for every pooled sqlite connection;
// without it ON DELETE CASCADE is ignored.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Ping checks connectivity.
func (db *DB) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
