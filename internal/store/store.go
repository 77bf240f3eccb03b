package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store persists all Huddle state: projects, members, tasks, pivots,
// submissions, vault secrets, access requests, and settings. The backend is
// selectable; SQLite is the default for single-binary deployments, Postgres
// and MySQL are available for hosted ones.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the given backend and runs migrations. Supported drivers
// are "sqlite", "postgres", and "mysql". For sqlite, dsn is a data directory
// (empty means in-memory); for the others it is a connection string.
func Open(driver, dsn string) (*Store, error) {
	var db *sqlx.DB
	var err error

	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		var path string
		if dsn == "" {
			path = ":memory:?_journal_mode=WAL"
		} else {
			if err := os.MkdirAll(dsn, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			path = filepath.Join(dsn, "huddle.db") + "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.Connect("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	case "postgres":
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
	case "mysql":
		db, err = sqlx.Connect("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the active backend driver name.
func (s *Store) Driver() string {
	return s.driver
}

// rebind converts ?-style placeholders to the driver's style. sqlx handles
// sqlite and mysql with ?; postgres needs $1, $2, ...
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}
