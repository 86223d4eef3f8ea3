//go:build integration

// Package testdb connects integration tests to a real PostgreSQL database.
//
// Tests that need a database call GetTestDBWithT, which skips the test when
// no database URL is configured, applies the embedded migrations once per
// connection and closes the connection when the test ends. WithTx runs a
// test body in a transaction that is always rolled back, so tests can share
// one database and still run in parallel.
//
// Set STUDYDECK_TEST_DATABASE_URL (or DATABASE_URL) and run
//
//	go test -tags=integration ./...
package testdb
