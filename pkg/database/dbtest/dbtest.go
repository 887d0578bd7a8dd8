// Package dbtest opens migrated in-memory SQLite table stores for tests.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/jordanlanch/funneltrack/pkg/database"
)

// Open returns a SQL store over a fresh in-memory SQLite database with the
// funnel tables created. The database is closed when the test ends.
func Open(t testing.TB) *database.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_fk=1"

	client, err := database.Open(context.Background(), "sqlite3", dsn, database.Options{
		Pool:        database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("failed opening sqlite store: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return database.NewStore(client, nil)
}
