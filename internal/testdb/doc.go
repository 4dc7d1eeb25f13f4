// Package testdb provides database helpers for tests.
//
// Open returns a migrated database: an in-memory SQLite database by default,
// or the PostgreSQL database named by DATABASE_URL when OpenPostgres is used
// from tests built with the integration tag.
//
// WithTx runs a test function in a transaction that is always rolled back,
// so tests sharing one PostgreSQL database do not see each other's rows:
//
//	func TestWordStore(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        words := database.NewWordStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
