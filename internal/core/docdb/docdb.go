// Package docdb defines the document database interface.
package docdb

import (
	"context"
)

// Cursor represents the results of a query.
type Cursor interface {
	// All decodes all remaining documents.
	All(ctx context.Context, results interface{}) error
	// Close closes the cursor.
	Close(ctx context.Context) error
}

// Collection defines the read operations on a document collection.
type Collection interface {
	// Find returns a cursor over every document matching the filter, in natural order.
	Find(ctx context.Context, filter interface{}) (Cursor, error)
}

// Database defines the interface for database operations.
type Database interface {
	// Name returns the database name.
	Name() string

	// Collection returns a collection by name.
	Collection(name string) Collection
}
