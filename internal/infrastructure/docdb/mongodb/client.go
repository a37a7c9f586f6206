// Package mongodb provides MongoDB client implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/pantryshelf/products-service/internal/core/docdb"
)

const (
	// DefaultDatabaseName is used when neither the configuration nor the URI names a database.
	DefaultDatabaseName = "test"
	// DefaultConnectTimeout bounds a single connect-and-ping attempt.
	DefaultConnectTimeout = 10 * time.Second
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client   *mongo.Client
	database *Database
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI            string
	DatabaseName   string
	AppName        string
	ConnectTimeout time.Duration
}

// NewClient creates a new MongoDB client. The client is returned only after the
// server answered a ping, which is the readiness signal for queries.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if config.AppName != "" {
		clientOpts.SetAppName(config.AppName)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Verify connection
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return newClient(client, ResolveDatabaseName(config.URI, config.DatabaseName)), nil
}

func newClient(client *mongo.Client, databaseName string) *Client {
	return &Client{
		client:   client,
		database: NewDatabase(client.Database(databaseName)),
	}
}

// NewDialer returns a docdb.Dialer that opens a new MongoDB client per call.
func NewDialer(config *ClientConfig) docdb.Dialer {
	return func(ctx context.Context) (docdb.Client, error) {
		client, err := NewClient(ctx, config)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// ResolveDatabaseName picks the configured name, then the database in the URI path,
// then DefaultDatabaseName.
func ResolveDatabaseName(uri, configured string) string {
	if configured != "" {
		return configured
	}
	if cs, err := connstring.ParseAndValidate(uri); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultDatabaseName
}

// Database returns the database interface.
func (c *Client) Database() docdb.Database {
	return c.database
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
