package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	defaultPingTimeout = 5 * time.Second
	sqliteDSNPragmas   = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
)

// Options configures Open.
type Options struct {
	Driver          string // DriverPostgres or DriverSQLite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DB is a connection pool paired with the dialect of its driver. It is created once at
// startup and shared by the repositories.
type DB struct {
	*sql.DB
	dialect dialect
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens and pings a connection pool for opts.Driver.
func Open(ctx context.Context, opts Options) (*DB, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	if d.name == DriverSQLite {
		dsn = withSQLitePragmas(dsn)
	}

	sqlDB, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if d.name == DriverSQLite {
		// SQLite serializes writers; a single connection also keeps ":memory:" databases alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, dialect: d}, nil
}

func withSQLitePragmas(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteDSNPragmas
	}
	return dsn + "?" + sqliteDSNPragmas
}

// Driver reports the driver name the pool was opened with.
func (db *DB) Driver() string {
	return db.dialect.name
}

// Migrate creates the stories and chapters tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	return db.withTx(ctx, "migrate", func(tx *sql.Tx) error {
		for _, stmt := range db.dialect.schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return classify("failed to apply schema", err)
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success and rolling back on error.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op+": failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(op+": failed to commit transaction", err)
	}
	return nil
}

// now is the timestamp source for created_at/updated_at. Postgres keeps microseconds.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
