// Package testdb runs repository tests against a real SurrealDB.
//
// Tests are skipped unless TEST_DB_HOST is set. TEST_DB_PORT, TEST_DB_USER
// and TEST_DB_PASSWORD default to 8000, root and root. Every TestDB gets its
// own namespace, removed on cleanup.
//
//	func TestSurrealSlot(t *testing.T) {
//	    tdb := testdb.New(t)
//	    slot := repository.NewSurrealSlot(tdb.DB, "guilds")
//	    ...
//	}
package testdb
