// Package products composes connection management and collection reads into one request flow.
package products

import (
	"context"
	"fmt"

	"github.com/pantryshelf/products-service/internal/domain/models"
)

// Connector ensures the document database connection is established.
type Connector interface {
	EnsureConnected(ctx context.Context) error
}

// Fetcher reads a whole collection.
type Fetcher interface {
	FetchAll(ctx context.Context, name string) ([]models.Document, error)
}

// Service lists the documents of a product collection.
type Service interface {
	// List connects if needed, then returns every document of the collection.
	List(ctx context.Context, collection string) ([]models.Document, error)
}

// service implements the Service interface.
type service struct {
	connector Connector
	fetcher   Fetcher
}

// Config holds the configuration for the products service.
type Config struct {
	Connector Connector
	Fetcher   Fetcher
}

// NewService creates a new products service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Connector == nil {
		return nil, fmt.Errorf("connector is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	return &service{
		connector: cfg.Connector,
		fetcher:   cfg.Fetcher,
	}, nil
}

// List runs the connect step then the fetch step. Errors from either step are
// returned unchanged so the caller can tell them apart.
func (s *service) List(ctx context.Context, collection string) ([]models.Document, error) {
	if err := s.connector.EnsureConnected(ctx); err != nil {
		return nil, err
	}

	return s.fetcher.FetchAll(ctx, collection)
}
