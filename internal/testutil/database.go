package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/engine"
)

// memDBCounter gives every test database a unique name so shared-cache
// in-memory databases stay isolated between tests.
var memDBCounter atomic.Int64

// NewTestDatabase creates a new in-memory SQLite database with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) engine.Database {
	t.Helper()
	db, _ := NewTestDatabaseWithConn(t)
	return db
}

// NewTestDatabaseWithConn also returns the raw connection, for tests
// that need to manipulate rows the store methods would never produce.
func NewTestDatabaseWithConn(t *testing.T) (engine.Database, *sql.DB) {
	t.Helper()

	// A plain ":memory:" DSN gives every pooled connection its own
	// private database; a named shared-cache DSN lets all connections
	// in the pool see the same in-memory database.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", memDBCounter.Add(1))
	sqlDB, err := database.OpenConnection(dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB)

	t.Cleanup(func() {
		db.Close()
	})

	return db, sqlDB
}
