package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default artifact filenames inside a models directory.
const (
	ManifestFilename = "pipeline.json"
	ScalerFilename   = "scaler.json"
	ReducerFilename  = "pca.json"
	ModelFilename    = "model.json"
	LabelsFilename   = "labels.txt"
	InfoFilename     = "plant_info.json"
)

// Manifest describes a models directory: the feature layout the artifacts
// were fit against and the filenames of each artifact. It resolves the
// resize-resolution ambiguity explicitly instead of baking a constant into
// the extractor.
type Manifest struct {
	Resolution int    `json:"resolution"`
	Scaler     string `json:"scaler"`
	Reducer    string `json:"reducer"`
	Model      string `json:"model"`
	Labels     string `json:"labels"`
	Info       string `json:"info,omitempty"`
}

// DefaultManifest returns the conventional filenames with the given
// resolution.
func DefaultManifest(resolution int) Manifest {
	return Manifest{
		Resolution: resolution,
		Scaler:     ScalerFilename,
		Reducer:    ReducerFilename,
		Model:      ModelFilename,
		Labels:     LabelsFilename,
		Info:       InfoFilename,
	}
}

// Save writes the manifest into the models directory.
func (m Manifest) Save(dir string) error {
	return saveJSON(filepath.Join(dir, ManifestFilename), m)
}

// LoadManifest reads a manifest from a models directory. A missing file
// is not an error: the conventional filenames with a zero resolution are
// returned so the caller can apply its documented default.
func LoadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultManifest(0), nil
	}

	var m Manifest
	if err := loadJSON(path, &m); err != nil {
		return Manifest{}, err
	}
	if m.Scaler == "" {
		m.Scaler = ScalerFilename
	}
	if m.Reducer == "" {
		m.Reducer = ReducerFilename
	}
	if m.Model == "" {
		m.Model = ModelFilename
	}
	if m.Labels == "" {
		m.Labels = LabelsFilename
	}
	if m.Resolution < 0 {
		return Manifest{}, fmt.Errorf("%w: %s: negative resolution", ErrArtifactLoad, path)
	}
	return m, nil
}
