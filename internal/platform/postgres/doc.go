// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. The schema lives in embedded goose
// migrations; see Migrate.
package postgres
