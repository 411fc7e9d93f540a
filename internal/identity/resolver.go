// Package identity maps Notion users to Telegram usernames.
package identity

import (
	"fmt"
	"os"

	"github.com/getmentor/notion-notifier/internal/models"
	"gopkg.in/yaml.v3"
)

// Built-in lookup tables, keyed by Notion user ID and by display name.
var (
	defaultHandlesByID = map[string]string{
		"224d872b-594c-81a5-9d6b-0002a0e6f1c3": "kirvahe",
	}

	defaultHandlesByName = map[string]string{
		"Vahe Kirakosyan": "kirvahe",
	}
)

// Resolver looks up Telegram handles. It is read-only after construction and
// safe for concurrent use.
type Resolver struct {
	byID   map[string]string
	byName map[string]string
}

// Tables is the on-disk format of a handles file
type Tables struct {
	ByID   map[string]string `yaml:"by_id"`
	ByName map[string]string `yaml:"by_name"`
}

// NewResolver creates a resolver over copies of the given tables
func NewResolver(byID, byName map[string]string) *Resolver {
	return &Resolver{
		byID:   copyTable(byID),
		byName: copyTable(byName),
	}
}

// Default returns a resolver over the built-in tables
func Default() *Resolver {
	return NewResolver(defaultHandlesByID, defaultHandlesByName)
}

// LoadFile reads a YAML handles file and merges it over the built-in tables.
// Entries from the file win over built-in entries with the same key.
func LoadFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read handles file: %w", err)
	}

	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse handles file: %w", err)
	}

	byID := copyTable(defaultHandlesByID)
	for k, v := range tables.ByID {
		byID[k] = v
	}
	byName := copyTable(defaultHandlesByName)
	for k, v := range tables.ByName {
		byName[k] = v
	}

	return &Resolver{byID: byID, byName: byName}, nil
}

// Resolve returns the Telegram handle (without "@") for a person.
// The ID table is consulted before the name table.
func (r *Resolver) Resolve(person models.Person) (string, bool) {
	if r == nil {
		return "", false
	}
	if handle, ok := r.byID[person.ID]; ok && person.ID != "" {
		return handle, true
	}
	if handle, ok := r.byName[person.Name]; ok && person.Name != "" {
		return handle, true
	}
	return "", false
}

// Size returns the number of entries in each table
func (r *Resolver) Size() (byID, byName int) {
	return len(r.byID), len(r.byName)
}

func copyTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
