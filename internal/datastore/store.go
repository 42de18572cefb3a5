// Package datastore writes exported books to SQLite, locally or through a
// remote Datasette instance.
package datastore

import "context"

// Store defines the interface for a table-oriented sink.
type Store interface {
	// Connect establishes a connection to the data store
	Connect(ctx context.Context) error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(ctx context.Context, schema string) error

	// ReplaceAll replaces the contents of table with records
	ReplaceAll(ctx context.Context, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
