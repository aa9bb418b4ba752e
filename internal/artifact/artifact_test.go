package artifact

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestScalerTransform(t *testing.T) {
	s := &Scaler{Mean: []float64{10, 20}, Scale: []float64{2, 0}}

	out, err := s.Transform([]float64{14, 25})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 2 {
		t.Fatalf("out[0] = %v, want 2", out[0])
	}
	// Zero-scale feature falls back to plain centering.
	if out[1] != 5 {
		t.Fatalf("out[1] = %v, want 5", out[1])
	}
}

func TestScalerTransformWidthMismatch(t *testing.T) {
	s := &Scaler{Mean: []float64{0, 0, 0}, Scale: []float64{1, 1, 1}}
	if _, err := s.Transform([]float64{1}); !errors.Is(err, ErrDimension) {
		t.Fatalf("want ErrDimension, got %v", err)
	}
}

func TestFitScaler(t *testing.T) {
	samples := [][]float64{
		{0, 4},
		{2, 4},
		{4, 4},
	}
	s, err := FitScaler(samples)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if s.Mean[0] != 2 || s.Mean[1] != 4 {
		t.Fatalf("mean = %v", s.Mean)
	}
	want := math.Sqrt(8.0 / 3.0)
	if math.Abs(s.Scale[0]-want) > 1e-12 {
		t.Fatalf("scale[0] = %v, want %v", s.Scale[0], want)
	}
	if s.Scale[1] != 0 {
		t.Fatalf("scale[1] = %v, want 0 for constant feature", s.Scale[1])
	}
}

func TestScalerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")

	s := &Scaler{Mean: []float64{1, 2, 3}, Scale: []float64{1, 1, 2}}
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadScaler(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Width() != 3 || loaded.Mean[2] != 3 || loaded.Scale[2] != 2 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadScalerMissing(t *testing.T) {
	_, err := LoadScaler(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("want ErrArtifactLoad, got %v", err)
	}
}

func TestLoadScalerCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadScaler(path); !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("want ErrArtifactLoad, got %v", err)
	}
}

func TestPCATransformIdentityComponents(t *testing.T) {
	p := &PCA{
		Mean: []float64{1, 1, 1},
		Components: [][]float64{
			{1, 0, 0},
			{0, 1, 0},
		},
	}

	out, err := p.Transform([]float64{3, 5, 9})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 2 || out[1] != 4 {
		t.Fatalf("out = %v, want [2 4]", out)
	}
}

func TestPCATransformWidthMismatch(t *testing.T) {
	p := &PCA{Mean: []float64{0, 0}, Components: [][]float64{{1, 0}}}
	if _, err := p.Transform([]float64{1, 2, 3}); !errors.Is(err, ErrDimension) {
		t.Fatalf("want ErrDimension, got %v", err)
	}
}

func TestFitPCARecoversDominantDirection(t *testing.T) {
	// Points spread along (1,1)/sqrt(2) with tiny orthogonal noise.
	samples := [][]float64{
		{-2, -2.01},
		{-1, -0.99},
		{0, 0.01},
		{1, 0.99},
		{2, 2.01},
	}
	p, err := FitPCA(samples, 1)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	c := p.Components[0]
	ratio := c[0] / c[1]
	if math.Abs(math.Abs(ratio)-1) > 0.05 {
		t.Fatalf("dominant direction %v not close to (1,1) axis", c)
	}

	// Projection of the mean point is zero.
	out, err := p.Transform(p.Mean)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if math.Abs(out[0]) > 1e-9 {
		t.Fatalf("projected mean = %v, want 0", out[0])
	}
}

func TestFitPCATooManyComponents(t *testing.T) {
	if _, err := FitPCA([][]float64{{1, 2}, {3, 4}}, 5); err == nil {
		t.Fatal("expected error for k > width")
	}
}

func TestLogisticProbabilities(t *testing.T) {
	m := &Logistic{
		Weights:    [][]float64{{1, 0}, {0, 1}, {0, 0}},
		Intercepts: []float64{0, 0, 0},
	}

	probs, err := m.Probabilities([]float64{5, 0})
	if err != nil {
		t.Fatalf("probabilities: %v", err)
	}
	if len(probs) != 3 {
		t.Fatalf("got %d probs, want 3", len(probs))
	}

	var sum float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("probability %v out of range", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	if probs[0] <= probs[1] || probs[0] <= probs[2] {
		t.Fatalf("class 0 should dominate: %v", probs)
	}
}

func TestFitLogisticSeparatesClasses(t *testing.T) {
	samples := [][]float64{
		{2, 0}, {2.5, 0.1}, {1.8, -0.2},
		{-2, 0}, {-2.2, 0.1}, {-1.9, -0.1},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	m, err := FitLogistic(samples, labels, 2, 300, 0.5)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	for i, x := range samples {
		probs, err := m.Probabilities(x)
		if err != nil {
			t.Fatalf("probabilities: %v", err)
		}
		best := 0
		if probs[1] > probs[0] {
			best = 1
		}
		if best != labels[i] {
			t.Fatalf("sample %d classified %d, want %d (probs %v)", i, best, labels[i], probs)
		}
	}
}

func testForest() *Forest {
	// Single split on feature 0; left leaf votes class 0, right leaf
	// votes class 1.
	return &Forest{
		Classes: 2,
		Trees: []TreeSpec{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 0, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: []float64{8, 2}},
				{Left: -1, Right: -1, Value: []float64{1, 9}},
			}},
		},
	}
}

func TestForestProbabilities(t *testing.T) {
	f := testForest()

	probs, err := f.Probabilities([]float64{-1})
	if err != nil {
		t.Fatalf("probabilities: %v", err)
	}
	if math.Abs(probs[0]-0.8) > 1e-9 || math.Abs(probs[1]-0.2) > 1e-9 {
		t.Fatalf("left leaf probs = %v, want [0.8 0.2]", probs)
	}

	probs, err = f.Probabilities([]float64{1})
	if err != nil {
		t.Fatalf("probabilities: %v", err)
	}
	if math.Abs(probs[1]-0.9) > 1e-9 {
		t.Fatalf("right leaf probs = %v, want [0.1 0.9]", probs)
	}
}

func TestModelRoundTripAndRegistry(t *testing.T) {
	dir := t.TempDir()

	logPath := filepath.Join(dir, "model.json")
	orig := &Logistic{
		Weights:    [][]float64{{0.5, -0.5}, {-0.5, 0.5}},
		Intercepts: []float64{0.1, -0.1},
	}
	if err := SaveModel(logPath, orig); err != nil {
		t.Fatalf("save logistic: %v", err)
	}
	m, err := LoadModel(logPath)
	if err != nil {
		t.Fatalf("load logistic: %v", err)
	}
	if m.Type() != "logistic" || m.NumClasses() != 2 {
		t.Fatalf("unexpected model: type=%s classes=%d", m.Type(), m.NumClasses())
	}

	forPath := filepath.Join(dir, "forest.json")
	if err := SaveModel(forPath, testForest()); err != nil {
		t.Fatalf("save forest: %v", err)
	}
	m, err = LoadModel(forPath)
	if err != nil {
		t.Fatalf("load forest: %v", err)
	}
	if m.Type() != "forest" {
		t.Fatalf("unexpected model type %s", m.Type())
	}
}

func TestLoadModelUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(`{"type":"svm","params":{}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadModel(path); !errors.Is(err, ErrArtifactLoad) {
		t.Fatalf("want ErrArtifactLoad, got %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := DefaultManifest(64)
	if err := m.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Resolution != 64 || loaded.Scaler != ScalerFilename {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadManifestMissingUsesDefaults(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Resolution != 0 {
		t.Fatalf("missing manifest should report zero resolution, got %d", m.Resolution)
	}
	if m.Model != ModelFilename || m.Labels != LabelsFilename {
		t.Fatalf("missing manifest should use conventional names: %+v", m)
	}
}
