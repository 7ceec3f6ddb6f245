// Package postgres implements the internal/store user and task contracts on
// PostgreSQL through database/sql and the pgx driver, and owns the schema
// migrations those stores rely on.
package postgres
