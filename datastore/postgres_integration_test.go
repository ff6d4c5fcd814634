//go:build integration

package datastore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a migrated DB.
func setupPostgres(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		// ILIKE folds non-ASCII text only under a UTF-8 locale.
		Env: map[string]string{
			"POSTGRES_USER":        "postgres",
			"POSTGRES_PASSWORD":    "password",
			"POSTGRES_DB":          "fabula",
			"POSTGRES_INITDB_ARGS": "--encoding=UTF8 --locale=en_US.UTF-8",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Postgres container: %v", err)
		}
	})

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("user=postgres password=password dbname=fabula host=%s port=%s sslmode=disable", host, port.Port())
	db, err := Open(ctx, Options{Driver: DriverPostgres, DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestPostgresStore(t *testing.T) {
	db := setupPostgres(t)
	testStores(t, NewStoryRepository(db), NewChapterRepository(db))

	_, err := db.ExecContext(context.Background(), `TRUNCATE chapters, stories RESTART IDENTITY`)
	require.NoError(t, err)
	testListStories(t, NewStoryRepository(db))
}
