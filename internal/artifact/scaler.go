package artifact

import (
	"fmt"
	"math"
)

// Scaler standardizes features to zero mean and unit variance using the
// statistics it was fit on.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Width reports the input width the scaler was fit on.
func (s *Scaler) Width() int {
	return len(s.Mean)
}

// Transform standardizes a vector. The input width must already match the
// fitted width; callers reconcile beforehand.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler fit on %d features, got %d", ErrDimension, len(s.Mean), len(x))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1 // constant feature, leave centered value as-is
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// FitScaler computes per-feature mean and population standard deviation
// over the sample rows.
func FitScaler(samples [][]float64) (*Scaler, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("fit scaler: no samples")
	}

	width := len(samples[0])
	mean := make([]float64, width)
	scale := make([]float64, width)

	for _, row := range samples {
		if len(row) != width {
			return nil, fmt.Errorf("fit scaler: ragged sample width %d, want %d", len(row), width)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	n := float64(len(samples))
	for i := range mean {
		mean[i] /= n
	}

	for _, row := range samples {
		for i, v := range row {
			d := v - mean[i]
			scale[i] += d * d
		}
	}
	for i := range scale {
		scale[i] = math.Sqrt(scale[i] / n)
	}

	return &Scaler{Mean: mean, Scale: scale}, nil
}

// Save writes the scaler to a JSON file.
func (s *Scaler) Save(path string) error {
	return saveJSON(path, s)
}

// LoadScaler reads a scaler from a JSON file.
func LoadScaler(path string) (*Scaler, error) {
	var s Scaler
	if err := loadJSON(path, &s); err != nil {
		return nil, err
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("%w: %s: inconsistent scaler vectors", ErrArtifactLoad, path)
	}
	return &s, nil
}
