// Package postgres provides PostgreSQL implementations of the card and review
// log stores defined in internal/store, plus the embedded schema migrations.
// Connections are opened through the pgx database/sql driver ("pgx").
package postgres
