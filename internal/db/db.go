package db

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
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database and applies pending migrations. For the
// sqlite driver dsn is a file path; for postgres it is a connection URL.
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, driver, dsn, true); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenForTesting returns a migrated, private in-memory SQLite database.
func OpenForTesting() (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(db, DriverSQLite, dsn, true); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Connect opens and pings the database without touching the schema.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies (up) or rolls back (down) every embedded migration for
// driver. ErrNoChange is not an error.
func Migrate(db *sqlx.DB, driver, dsn string, up bool) error {
	m, closeFn, err := newMigrator(db, driver, dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %s: %w", driver, err)
	}
	return nil
}

// newMigrator builds a migrate instance. The postgres migrate driver pins a
// connection and closes its *sql.DB on Close, so it gets a private handle;
// the sqlite driver shares the caller's pool and must never be closed.
func newMigrator(db *sqlx.DB, driver, dsn string) (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var (
		target  database.Driver
		closeFn = func() { _ = src.Close() }
	)
	switch driver {
	case DriverSQLite:
		target, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case DriverPostgres:
		var own *sql.DB
		own, err = sql.Open(DriverPostgres, dsn)
		if err != nil {
			break
		}
		target, err = postgres.WithInstance(own, &postgres.Config{})
		if err != nil {
			_ = own.Close()
			break
		}
		closeFn = func() { _ = target.Close(); _ = src.Close() }
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, closeFn, nil
}
