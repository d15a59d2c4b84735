package database

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// containerDB is a migrated Postgres running in a throwaway container.
// The container is terminated when the test finishes.
type containerDB struct {
	*DB
}

func newContainerDB(t *testing.T) *containerDB {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("carteira"),
		tcpostgres.WithUsername("carteira"),
		tcpostgres.WithPassword("carteira"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := New(connStr)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c := &containerDB{DB: db}
	if err := c.migrateUp(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return c
}

// migrateUp applies db/migrations from the repository root
func (c *containerDB) migrateUp() error {
	_, filename, _, _ := runtime.Caller(0)
	return c.Migrate(filepath.Join(filepath.Dir(filename), "..", "..", "db", "migrations"))
}

// reset empties every table, children first
func (c *containerDB) reset(t *testing.T) {
	t.Helper()
	if _, err := c.conn.Exec(`TRUNCATE TABLE alert_history, quote_cache, option_positions, positions RESTART IDENTITY`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
