package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// KeyBuilder accumulates named projection inputs into a fingerprint.
// Component order does not matter; component names must be unique.
type KeyBuilder struct {
	kind  string
	parts map[string]any
}

// NewKey starts a key for the named projection kind.
func NewKey(kind string) *KeyBuilder {
	return &KeyBuilder{kind: strings.ToLower(strings.TrimSpace(kind)), parts: map[string]any{}}
}

// With adds a named component. v must be JSON-serialisable.
func (b *KeyBuilder) With(name string, v any) *KeyBuilder {
	b.parts[name] = v
	return b
}

// Kind returns the projection kind.
func (b *KeyBuilder) Kind() string { return b.kind }

// Build returns the hex SHA-256 fingerprint of the kind and components.
func (b *KeyBuilder) Build() (string, error) {
	names := make([]string, 0, len(b.parts))
	for name := range b.parts {
		names = append(names, name)
	}
	slices.Sort(names)

	h := sha256.New()
	_, _ = fmt.Fprintf(h, "kind=%s\n", b.kind)
	for _, name := range names {
		data, err := json.Marshal(b.parts[name])
		if err != nil {
			return "", fmt.Errorf("fingerprinting %s: %w", name, err)
		}
		_, _ = fmt.Fprintf(h, "%s=%d:", name, len(data))
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint hashes a single JSON-serialisable value.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprinting value: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
