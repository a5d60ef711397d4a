// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver.
//
// Stores accept a store.DBTX so the same implementation serves both a
// connection pool and a transaction (see WithTx). Database errors are
// translated into the sentinel errors of package store; the schema lives in
// the embedded goose migrations applied by Migrate.
package postgres
