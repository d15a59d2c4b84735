package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := newContainerDB(t)

	t.Run("all tables exist", func(t *testing.T) {
		for _, tableName := range []string{"positions", "option_positions", "quote_cache", "alert_history"} {
			var exists bool
			err := testDB.conn.QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("positions reject negative prices", func(t *testing.T) {
		_, err := testDB.conn.Exec(`INSERT INTO positions (code, avg_price, target_price) VALUES ('NEG3.SA', -1, 0)`)
		assert.Error(t, err)
	})

	t.Run("migrating twice is a no-op", func(t *testing.T) {
		assert.NoError(t, testDB.migrateUp())
	})
}
