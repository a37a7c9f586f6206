package vault

import "fmt"

// Type represents the type of vault.
type Type string

const (
	// TypeDotEnv represents a DotEnv vault backed by the process environment.
	TypeDotEnv Type = "dotenv"
)

// ParseType validates a configured vault type.
func ParseType(value string) (Type, error) {
	switch t := Type(value); t {
	case TypeDotEnv:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported vault type: %q", value)
	}
}

// Scheme returns the reference prefix for secrets held by this vault type, e.g. "dotenv://".
func (t Type) Scheme() string {
	return string(t) + "://"
}
