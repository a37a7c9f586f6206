// Package docdb defines the document database client interface.
package docdb

import (
	"context"
)

// Client defines the interface for a document database client.
type Client interface {
	// Database returns the database interface.
	Database() Database

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}

// Dialer opens a new client. A returned client is ready for queries.
type Dialer func(ctx context.Context) (Client, error)
