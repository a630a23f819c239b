// Package testdb provides helpers for tests that need a real PostgreSQL
// database.
//
// Tests skip themselves unless LINGUA_TEST_DATABASE_URL or DATABASE_URL is
// set. The schema is migrated with the embedded goose migrations, and tables
// can be reset between subtests:
//
//	func TestStores(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.ResetTables(t, db)
//	    users := postgres.NewUserStore(db)
//	    ...
//	}
//
// WithTx runs a function inside a transaction that is always rolled back,
// for tests that never trigger a constraint violation.
package testdb
