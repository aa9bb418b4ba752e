// Package artifact implements the persisted statistical transformers the
// classification pipeline runs on: a standard scaler, a PCA projection,
// and a probability-producing classifier. Artifacts are stored as plain
// JSON so they stay portable across the tools that fit them and the hosts
// that serve them, rather than as language-specific object dumps.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrArtifactLoad indicates a persisted transformer file was missing,
// unreadable, or not deserializable as the expected type.
var ErrArtifactLoad = errors.New("artifact load failed")

// ErrDimension indicates an input vector's width disagrees with what the
// fitted transformer expects.
var ErrDimension = errors.New("dimension mismatch")

// saveJSON writes a value as indented JSON, the common persistence path
// for all artifact files.
func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// loadJSON reads an artifact file into v, wrapping failures in
// ErrArtifactLoad.
func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}
	return nil
}
