// Package database provides the PostgreSQL connection pool for quote
// history. Storage is optional: monitors run without a database unless
// a history host is configured.
package database
