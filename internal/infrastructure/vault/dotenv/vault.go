// Package dotenv provides a dotenv-based vault implementation.
package dotenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/pantryshelf/products-service/internal/core/vault"
)

// Vault implements vault.Vault on top of environment variables, optionally
// overlaid with values read from dotenv files.
type Vault struct {
	// secrets holds values from dotenv files that were not exported to the environment.
	secrets map[string]string
	mu      sync.RWMutex
}

var _ vault.Vault = (*Vault)(nil)

// NewVault creates a new DotEnv vault instance. Values in the given files are
// consulted after the process environment; missing files are an error.
func NewVault(files ...string) (*Vault, error) {
	v := &Vault{
		secrets: make(map[string]string),
	}

	if len(files) > 0 {
		values, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("failed to read dotenv files: %w", err)
		}
		v.secrets = values
	}

	return v, nil
}

// Type returns vault.TypeDotEnv.
func (v *Vault) Type() vault.Type {
	return vault.TypeDotEnv
}

// GetSecret retrieves a secret from environment variables or the dotenv overlay.
func (v *Vault) GetSecret(ctx context.Context, uri string) (string, error) {
	key := strings.TrimPrefix(uri, vault.TypeDotEnv.Scheme())
	if key == "" {
		return "", fmt.Errorf("secret key is empty")
	}

	// First check environment variables
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if value, ok := v.secrets[key]; ok {
		return value, nil
	}

	return "", fmt.Errorf("secret not found: %s", key)
}

// Ping checks if the vault is available (always returns nil for dotenv).
func (v *Vault) Ping(ctx context.Context) error {
	return nil
}

// Close drops the in-memory overlay.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.secrets = make(map[string]string)
	return nil
}
