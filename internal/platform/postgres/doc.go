// Package postgres implements the database-backed settings store: a
// store.Manager persisting setting values as JSON rows in a settings table,
// scoped per service namespace, plus the goose migrations that own that
// table's schema.
package postgres
