// Package prefs persists small view preferences (like the board density)
// between sessions as a JSON file.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a write-through key-value file. Missing or corrupt files load as
// empty so a bad state file never blocks startup.
type Store struct {
	path   string
	values map[string]string
}

// DefaultPath returns ~/.config/closeboard/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "closeboard", "state.json"), nil
}

// Open loads the store at path, tolerating absence and corruption.
func Open(path string) *Store {
	s := &Store{path: path, values: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return s
	}
	s.values = values
	return s
}

// Get returns the stored value for key.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores the value and writes the file immediately.
func (s *Store) Set(key, value string) error {
	s.values[key] = value
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
