package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NilConfig(t *testing.T) {
	client, err := NewClient(context.Background(), nil)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestNewClient_MissingURI(t *testing.T) {
	client, err := NewClient(context.Background(), &ClientConfig{DatabaseName: "shop"})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "mongodb URI is required")
}

func TestNewClient_InvalidURI(t *testing.T) {
	client, err := NewClient(context.Background(), &ClientConfig{URI: "not-a-uri"})

	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNewDialer_PropagatesError(t *testing.T) {
	dial := NewDialer(&ClientConfig{})

	client, err := dial(context.Background())

	require.Error(t, err)
	assert.Nil(t, client)
}

func TestResolveDatabaseName(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		configured string
		expected   string
	}{
		{"configured wins", "mongodb://localhost:27017/fromuri", "explicit", "explicit"},
		{"from uri path", "mongodb://localhost:27017/pantry?retryWrites=true", "", "pantry"},
		{"no path", "mongodb://localhost:27017", "", DefaultDatabaseName},
		{"unparseable", "::::", "", DefaultDatabaseName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDatabaseName(tt.uri, tt.configured))
		})
	}
}
