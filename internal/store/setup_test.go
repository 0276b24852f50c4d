package store

import (
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/database"
	"github.com/jmoiron/sqlx"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testNow is a Wednesday afternoon, in the middle of the week of 2026-10-19.
var testNow = time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC)
