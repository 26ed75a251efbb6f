package testutil

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grocerify/internal/auth"
	"grocerify/internal/db"
)

// OpenInMemoryDB opens a named shared-cache in-memory SQLite database with the
// schema applied. The name is derived from the test name, so parallel tests do
// not share state. The DB is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// FastHashing lowers the bcrypt cost for the duration of the test.
func FastHashing(t *testing.T) {
	t.Helper()
	prev := auth.Cost
	auth.Cost = bcrypt.MinCost
	t.Cleanup(func() { auth.Cost = prev })
}

// FixedClock returns a clock func that always reports ts.
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
