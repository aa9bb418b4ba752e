package classify

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mediplant/internal/artifact"
	"mediplant/internal/plant"
)

const testResolution = 8

// writeArtifacts builds a models directory whose scaler expects the given
// width, with an identity-like PCA down to 2 components and the supplied
// classifier.
func writeArtifacts(t *testing.T, dir string, width int, model artifact.Model) {
	t.Helper()

	if err := artifact.DefaultManifest(testResolution).Save(dir); err != nil {
		t.Fatalf("save manifest: %v", err)
	}

	scaler := &artifact.Scaler{
		Mean:  make([]float64, width),
		Scale: make([]float64, width),
	}
	for i := range scaler.Scale {
		scaler.Scale[i] = 1
	}
	if err := scaler.Save(filepath.Join(dir, artifact.ScalerFilename)); err != nil {
		t.Fatalf("save scaler: %v", err)
	}

	pca := &artifact.PCA{
		Mean:       make([]float64, width),
		Components: make([][]float64, 2),
	}
	for i := range pca.Components {
		row := make([]float64, width)
		row[i] = 1
		pca.Components[i] = row
	}
	if err := pca.Save(filepath.Join(dir, artifact.ReducerFilename)); err != nil {
		t.Fatalf("save pca: %v", err)
	}

	if err := artifact.SaveModel(filepath.Join(dir, artifact.ModelFilename), model); err != nil {
		t.Fatalf("save model: %v", err)
	}

	labels := plant.Labels{"tulsi", "neem", "turmeric"}
	if err := labels.Save(filepath.Join(dir, artifact.LabelsFilename)); err != nil {
		t.Fatalf("save labels: %v", err)
	}
}

func uniformModel() artifact.Model {
	return &artifact.Logistic{
		Weights:    [][]float64{{0, 0}, {0, 0}, {0, 0}},
		Intercepts: []float64{0, 0, 0},
	}
}

func biasedModel() artifact.Model {
	// Intercepts alone decide the ranking: neem > tulsi > turmeric.
	return &artifact.Logistic{
		Weights:    [][]float64{{0, 0}, {0, 0}, {0, 0}},
		Intercepts: []float64{1, 3, -1},
	}
}

func writeTestImage(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "leaf.png")
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: uint8(100 + x*3), B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
	return path
}

func vectorWidth() int {
	return 3*testResolution*testResolution + 16
}

func TestLoadMissingArtifactsDegrades(t *testing.T) {
	c := Load(t.TempDir())
	if c.Available() {
		t.Fatal("classifier should be unavailable with no artifacts")
	}
	if c.Err() == nil {
		t.Fatal("Err should report the load failure")
	}

	res := c.Classify("whatever.jpg", 3)
	if res.Success {
		t.Fatal("classification should fail cleanly when unavailable")
	}
	if res.Error == "" {
		t.Fatal("failure result should carry an error message")
	}
}

func TestClassifyEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, vectorWidth(), biasedModel())
	imgPath := writeTestImage(t, dir)

	c := Load(dir)
	if !c.Available() {
		t.Fatalf("load failed: %v", c.Err())
	}

	res := c.Classify(imgPath, 3)
	if !res.Success {
		t.Fatalf("classification failed: %s", res.Error)
	}
	if res.PredictedClass != "neem" {
		t.Fatalf("predicted %q, want neem", res.PredictedClass)
	}
	if len(res.TopPredictions) != 3 {
		t.Fatalf("got %d top predictions, want 3", len(res.TopPredictions))
	}

	// Non-increasing confidences, all within [0, 100], top entry equals
	// the headline prediction.
	prev := 101.0
	for _, s := range res.TopPredictions {
		if s.Confidence < 0 || s.Confidence > 100 {
			t.Fatalf("confidence %v out of range", s.Confidence)
		}
		if s.Confidence > prev {
			t.Fatalf("top predictions not sorted: %v after %v", s.Confidence, prev)
		}
		prev = s.Confidence
	}
	if res.Confidence != res.TopPredictions[0].Confidence {
		t.Fatalf("headline confidence %v != top entry %v", res.Confidence, res.TopPredictions[0].Confidence)
	}
	if res.TopPredictions[1].Plant != "tulsi" || res.TopPredictions[2].Plant != "turmeric" {
		t.Fatalf("unexpected ranking: %+v", res.TopPredictions)
	}
}

func TestClassifyTieBreaksByClassIndex(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, vectorWidth(), uniformModel())
	imgPath := writeTestImage(t, dir)

	c := Load(dir)
	res := c.Classify(imgPath, 3)
	if !res.Success {
		t.Fatalf("classification failed: %s", res.Error)
	}

	// All probabilities equal; lower class index wins each tie.
	want := []string{"tulsi", "neem", "turmeric"}
	for i, s := range res.TopPredictions {
		if s.Plant != want[i] {
			t.Fatalf("position %d = %q, want %q", i, s.Plant, want[i])
		}
	}
}

func TestClassifyReconcilesNarrowScaler(t *testing.T) {
	dir := t.TempDir()
	// Scaler fit on far fewer features than the extractor produces; the
	// descriptor must be truncated, not rejected.
	writeArtifacts(t, dir, 100, biasedModel())
	imgPath := writeTestImage(t, dir)

	c := Load(dir)
	res := c.Classify(imgPath, 2)
	if !res.Success {
		t.Fatalf("classification failed: %s", res.Error)
	}
	if len(res.TopPredictions) != 2 {
		t.Fatalf("got %d top predictions, want 2", len(res.TopPredictions))
	}
}

func TestClassifyReconcilesWideScaler(t *testing.T) {
	dir := t.TempDir()
	// Scaler wider than the descriptor; the vector is zero-padded.
	writeArtifacts(t, dir, vectorWidth()+500, biasedModel())
	imgPath := writeTestImage(t, dir)

	c := Load(dir)
	res := c.Classify(imgPath, 1)
	if !res.Success {
		t.Fatalf("classification failed: %s", res.Error)
	}
}

func TestClassifyCorruptImage(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, vectorWidth(), biasedModel())

	junk := filepath.Join(dir, "junk.jpg")
	if err := os.WriteFile(junk, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	c := Load(dir)
	res := c.Classify(junk, 3)
	if res.Success {
		t.Fatal("corrupt image should fail cleanly")
	}
	if res.Error == "" {
		t.Fatal("failure result should carry a non-empty error")
	}
}

func TestClassifyTopKClamping(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, vectorWidth(), biasedModel())
	imgPath := writeTestImage(t, dir)

	c := Load(dir)

	res := c.Classify(imgPath, 10)
	if len(res.TopPredictions) != 3 {
		t.Fatalf("topK beyond class count should clamp to 3, got %d", len(res.TopPredictions))
	}

	res = c.Classify(imgPath, 0)
	if len(res.TopPredictions) != DefaultTopK {
		t.Fatalf("topK 0 should use the default %d, got %d", DefaultTopK, len(res.TopPredictions))
	}
}
