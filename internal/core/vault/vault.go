// Package vault defines the vault interface for secrets management.
package vault

import (
	"context"
	"fmt"
	"strings"
)

// Vault defines the read-only secret operations the service needs.
type Vault interface {
	// Type returns the vault type, which also determines its reference scheme.
	Type() Type

	// GetSecret retrieves a secret by reference URI or bare key.
	GetSecret(ctx context.Context, uri string) (string, error)

	// Ping checks if the vault is reachable.
	Ping(ctx context.Context) error

	// Close releases vault resources.
	Close() error
}

// IsReference reports whether value points at a secret in a vault of type t.
func IsReference(t Type, value string) bool {
	return strings.HasPrefix(value, t.Scheme())
}

// Resolve returns value unchanged unless it is a reference into v, in which case
// the vault is pinged and the referenced secret is returned.
func Resolve(ctx context.Context, v Vault, value string) (string, error) {
	if v == nil || !IsReference(v.Type(), value) {
		return value, nil
	}

	if err := v.Ping(ctx); err != nil {
		return "", fmt.Errorf("vault %s is unreachable: %w", v.Type(), err)
	}

	secret, err := v.GetSecret(ctx, value)
	if err != nil {
		return "", fmt.Errorf("failed to resolve secret reference: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("secret reference %s resolved to an empty value", value)
	}
	return secret, nil
}
