// Package mongodb provides MongoDB database implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pantryshelf/products-service/internal/core/docdb"
)

// Collection implements the docdb.Collection interface for MongoDB.
type Collection struct {
	collection *mongo.Collection
}

// NewCollection creates a new MongoDB collection wrapper.
func NewCollection(collection *mongo.Collection) *Collection {
	return &Collection{
		collection: collection,
	}
}

// Find finds all documents matching the filter. A nil filter matches every document.
func (c *Collection) Find(ctx context.Context, filter interface{}) (docdb.Cursor, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cursor, err := c.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents in %s: %w", c.collection.Name(), err)
	}

	return &Cursor{cursor: cursor}, nil
}

// Database implements the docdb.Database interface for MongoDB.
type Database struct {
	database *mongo.Database
}

// NewDatabase creates a new MongoDB database wrapper.
func NewDatabase(database *mongo.Database) *Database {
	return &Database{
		database: database,
	}
}

// Name returns the database name.
func (d *Database) Name() string {
	return d.database.Name()
}

// Collection returns a collection from the database.
func (d *Database) Collection(name string) docdb.Collection {
	return NewCollection(d.database.Collection(name))
}

// Cursor wraps a MongoDB cursor.
type Cursor struct {
	cursor *mongo.Cursor
}

// All decodes all remaining documents and closes the cursor.
func (c *Cursor) All(ctx context.Context, results interface{}) error {
	return c.cursor.All(ctx, results)
}

// Close closes the cursor.
func (c *Cursor) Close(ctx context.Context) error {
	return c.cursor.Close(ctx)
}
