package datastore

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// Supported driver names. They match the names the drivers register with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// dialect holds what differs between the SQL backends. Both drivers accept $N
// placeholders, so queries themselves are shared.
type dialect struct {
	name   string
	schema []string
	// tagsArg converts story tags into a bind argument.
	tagsArg func(tags []string) (any, error)
	// tagsDest returns a scan destination that fills *dst.
	tagsDest func(dst *[]string) any
	// containsFold renders a case-insensitive substring match of column against the
	// LIKE pattern bound to placeholder; foldPattern prepares the bound value.
	containsFold func(column, placeholder string) string
	foldPattern  func(value string) string
}

// sqliteLowerFunc folds case over all of Unicode. SQLite's built-in LOWER and LIKE
// only fold ASCII.
const sqliteLowerFunc = "fabula_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, foldCase)
}

func foldCase(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

func likePattern(value string) string {
	return "%" + escapeLike(value) + "%"
}

func dialectFor(driverName string) (dialect, error) {
	switch driverName {
	case DriverPostgres:
		return postgresDialect, nil
	case DriverSQLite:
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driverName)
	}
}

var postgresDialect = dialect{
	name: DriverPostgres,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS stories (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			author      TEXT NOT NULL,
			category    TEXT NOT NULL,
			tags        TEXT[] NOT NULL DEFAULT '{}',
			status      TEXT NOT NULL CHECK (status IN ('DRAFT', 'PUBLISHED')),
			synopsis    TEXT NOT NULL,
			story_cover TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			id         BIGSERIAL PRIMARY KEY,
			story_id   BIGINT NOT NULL REFERENCES stories (id),
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chapters_story_id_idx ON chapters (story_id)`,
		`CREATE INDEX IF NOT EXISTS stories_created_at_idx ON stories (created_at DESC)`,
	},
	tagsArg: func(tags []string) (any, error) {
		if tags == nil {
			tags = []string{}
		}
		return pq.Array(tags), nil
	},
	tagsDest: func(dst *[]string) any {
		return pq.Array(dst)
	},
	containsFold: func(column, placeholder string) string {
		return column + " ILIKE " + placeholder + ` ESCAPE '\'`
	},
	foldPattern: likePattern,
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS stories (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			author      TEXT NOT NULL,
			category    TEXT NOT NULL,
			tags        TEXT NOT NULL DEFAULT '[]',
			status      TEXT NOT NULL CHECK (status IN ('DRAFT', 'PUBLISHED')),
			synopsis    TEXT NOT NULL,
			story_cover TEXT NOT NULL,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id   INTEGER NOT NULL REFERENCES stories (id),
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chapters_story_id_idx ON chapters (story_id)`,
		`CREATE INDEX IF NOT EXISTS stories_created_at_idx ON stories (created_at DESC)`,
	},
	tagsArg: func(tags []string) (any, error) {
		if tags == nil {
			tags = []string{}
		}
		b, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		return string(b), nil
	},
	tagsDest: func(dst *[]string) any {
		return &jsonTags{dst: dst}
	},
	containsFold: func(column, placeholder string) string {
		return sqliteLowerFunc + "(" + column + ") LIKE " + placeholder + ` ESCAPE '\'`
	},
	foldPattern: func(value string) string {
		return likePattern(strings.ToLower(value))
	},
}

// jsonTags scans a JSON array column into a string slice.
type jsonTags struct {
	dst *[]string
}

func (j *jsonTags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*j.dst = []string{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into tags", src)
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	*j.dst = tags
	return nil
}

var _ sql.Scanner = (*jsonTags)(nil)
