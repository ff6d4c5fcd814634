package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on a uniqueness violation.
	ErrConflict = errors.New("record already exists")
	// ErrInvalidReference is returned when a foreign key points at a missing record,
	// e.g. a chapter created for a story that does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// PostgreSQL SQLSTATE codes.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// PersistenceError is any store failure that is not one of the sentinel conditions.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// classify wraps a driver error for op. Constraint violations become the matching
// sentinel (with the driver error kept in the message), sql.ErrNoRows becomes
// ErrNotFound, everything else a *PersistenceError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w: %v", op, ErrInvalidReference, err)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w: %v", op, ErrInvalidReference, err)
		}
		// Extended codes may be off for connections opened outside Open.
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "FOREIGN KEY") {
			return fmt.Errorf("%s: %w: %v", op, ErrInvalidReference, err)
		}
	}

	return &PersistenceError{Op: op, Err: err}
}
