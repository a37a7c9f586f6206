// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pantryshelf/products-service/internal/core/docdb"
)

// MockCursor is a mock implementation of docdb.Cursor.
type MockCursor struct {
	mock.Mock
}

// All decodes all remaining documents.
func (m *MockCursor) All(ctx context.Context, results interface{}) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

// Close closes the cursor.
func (m *MockCursor) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCollection is a mock implementation of docdb.Collection.
type MockCollection struct {
	mock.Mock
}

// Find finds multiple documents.
func (m *MockCollection) Find(ctx context.Context, filter interface{}) (docdb.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(docdb.Cursor), args.Error(1)
}

// MockDatabase is a mock implementation of docdb.Database.
type MockDatabase struct {
	mock.Mock
}

// Name returns the database name.
func (m *MockDatabase) Name() string {
	args := m.Called()
	return args.String(0)
}

// Collection returns a collection from the database.
func (m *MockDatabase) Collection(name string) docdb.Collection {
	args := m.Called(name)
	return args.Get(0).(docdb.Collection)
}

// MockDocDBClient is a mock implementation of docdb.Client.
type MockDocDBClient struct {
	mock.Mock
	database *MockDatabase
}

// NewMockDocDBClient creates a new MockDocDBClient.
func NewMockDocDBClient() *MockDocDBClient {
	return &MockDocDBClient{
		database: &MockDatabase{},
	}
}

// Database returns the database.
func (m *MockDocDBClient) Database() docdb.Database {
	return m.database
}

// GetMockDatabase returns the mock database for setting expectations.
func (m *MockDocDBClient) GetMockDatabase() *MockDatabase {
	return m.database
}

// Ping checks the database connection.
func (m *MockDocDBClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the database connection.
func (m *MockDocDBClient) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDialer records dial calls. Pass Dial as a docdb.Dialer.
type MockDialer struct {
	mock.Mock
}

// Dial opens a client.
func (m *MockDialer) Dial(ctx context.Context) (docdb.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(docdb.Client), args.Error(1)
}
