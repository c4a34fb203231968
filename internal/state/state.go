// Package state persists the visualization on/off flag between runs.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type document struct {
	VisualizationEnabled *bool `yaml:"visualization_enabled,omitempty"`
}

// Store reads and writes a small YAML file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the saved flag. A missing file or key means enabled.
func (s *Store) Load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("reading state: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return true, fmt.Errorf("parsing state %s: %w", s.path, err)
	}
	if doc.VisualizationEnabled == nil {
		return true, nil
	}
	return *doc.VisualizationEnabled, nil
}

// Save writes the flag, replacing the file atomically.
func (s *Store) Save(enabled bool) error {
	data, err := yaml.Marshal(document{VisualizationEnabled: &enabled})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}
