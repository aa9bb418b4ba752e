// Package classify runs the plant identification pipeline: feature
// extraction, length reconciliation, scaling, PCA projection, and
// classification against persisted artifacts. Failures never escape a
// public operation; every call yields either a complete ranked result or
// a clean tagged failure.
package classify

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"

	"mediplant/internal/artifact"
	"mediplant/internal/feature"
	"mediplant/internal/plant"
)

// ErrUnavailable indicates the classifier never loaded its artifacts and
// is running in the degraded state where every prediction fails cleanly.
var ErrUnavailable = errors.New("classifier artifacts not loaded")

// DefaultTopK is the ranked-alternative count used when a caller passes a
// non-positive top-K.
const DefaultTopK = 3

// Score is one ranked prediction.
type Score struct {
	Plant      string  `json:"plant"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of one classification call. Either Success is
// true and the ranked fields are fully populated, or Success is false and
// Error carries the cause. Never partial.
type Result struct {
	Success        bool    `json:"success"`
	PredictedClass string  `json:"predicted_class,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	TopPredictions []Score `json:"top_predictions,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// Classifier holds the immutably-loaded transformers and label table.
// After Load returns, a Classifier is read-only and safe for concurrent
// Classify calls without locking.
type Classifier struct {
	cfg     feature.Config
	scaler  *artifact.Scaler
	reducer *artifact.PCA
	model   artifact.Model
	labels  plant.Labels
	info    plant.InfoTable
	loadErr error
}

// Load reads the artifacts from a models directory. Load never fails:
// when any artifact is missing or corrupt the classifier comes up in a
// degraded unavailable state, predictions return clean failures, and Err
// exposes the cause for logging. Callers decide whether that is fatal.
func Load(dir string) *Classifier {
	manifest, err := artifact.LoadManifest(dir)
	if err != nil {
		return &Classifier{loadErr: err}
	}

	resolution := manifest.Resolution
	if resolution == 0 {
		// No manifest present. The artifacts in circulation were fit at
		// the documented default; guessing anything else would make
		// reconciliation silently lossy.
		resolution = feature.DefaultResolution
	}

	c := &Classifier{cfg: feature.Config{Resolution: resolution}}

	if c.scaler, err = artifact.LoadScaler(filepath.Join(dir, manifest.Scaler)); err != nil {
		return &Classifier{cfg: c.cfg, loadErr: err}
	}
	if c.reducer, err = artifact.LoadPCA(filepath.Join(dir, manifest.Reducer)); err != nil {
		return &Classifier{cfg: c.cfg, loadErr: err}
	}
	if c.model, err = artifact.LoadModel(filepath.Join(dir, manifest.Model)); err != nil {
		return &Classifier{cfg: c.cfg, loadErr: err}
	}
	if c.labels, err = plant.LoadLabels(filepath.Join(dir, manifest.Labels)); err != nil {
		return &Classifier{cfg: c.cfg, loadErr: fmt.Errorf("%w: %v", artifact.ErrArtifactLoad, err)}
	}

	if manifest.Info != "" {
		if c.info, err = plant.LoadInfo(filepath.Join(dir, manifest.Info)); err != nil {
			// Metadata is enrichment only; a bad info file does not
			// degrade the pipeline.
			c.info = plant.InfoTable{}
		}
	}

	return c
}

// Available reports whether the artifacts loaded successfully.
func (c *Classifier) Available() bool {
	return c.loadErr == nil && c.model != nil
}

// Err returns the artifact load error, if any.
func (c *Classifier) Err() error {
	return c.loadErr
}

// Config returns the feature layout the classifier extracts with.
func (c *Classifier) Config() feature.Config {
	return c.cfg
}

// Labels returns the class label table.
func (c *Classifier) Labels() plant.Labels {
	return c.labels
}

// Info returns metadata for a plant name, if known.
func (c *Classifier) Info(name string) (plant.Info, bool) {
	info, ok := c.info[name]
	return info, ok
}

// Classify identifies the plant in an image file and returns the top-K
// ranked predictions.
func (c *Classifier) Classify(path string, topK int) Result {
	if !c.Available() {
		return failure(ErrUnavailable)
	}

	vec, err := feature.ExtractFile(path, c.cfg)
	if err != nil {
		return failure(err)
	}

	return c.predict(vec, topK)
}

// ClassifyImage identifies the plant in an already-decoded image.
func (c *Classifier) ClassifyImage(img image.Image, topK int) Result {
	if !c.Available() {
		return failure(ErrUnavailable)
	}

	return c.predict(feature.Extract(img, c.cfg), topK)
}

func (c *Classifier) predict(vec []float64, topK int) Result {
	vec = feature.Reconcile(vec, c.scaler.Width())

	scaled, err := c.scaler.Transform(vec)
	if errors.Is(err, artifact.ErrDimension) {
		// Defensive: reconciliation above guarantees the width, so this
		// retry cannot trigger under the current policy. Kept so a future
		// scaler that reports its width differently still recovers.
		vec = feature.Reconcile(vec, c.scaler.Width())
		scaled, err = c.scaler.Transform(vec)
	}
	if err != nil {
		return failure(fmt.Errorf("scale features: %w", err))
	}

	reduced, err := c.reducer.Transform(scaled)
	if err != nil {
		return failure(fmt.Errorf("reduce features: %w", err))
	}

	probs, err := c.model.Probabilities(reduced)
	if err != nil {
		return failure(fmt.Errorf("predict: %w", err))
	}

	return c.rank(probs, topK)
}

// rank orders classes by descending probability, ties broken by ascending
// class index, and assembles the result.
func (c *Classifier) rank(probs []float64, topK int) Result {
	if len(probs) == 0 {
		return failure(fmt.Errorf("predict: empty probability vector"))
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})

	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(order) {
		topK = len(order)
	}

	top := make([]Score, 0, topK)
	for _, idx := range order[:topK] {
		top = append(top, Score{
			Plant:      c.labels.Name(idx),
			Confidence: probs[idx] * 100,
		})
	}

	return Result{
		Success:        true,
		PredictedClass: top[0].Plant,
		Confidence:     top[0].Confidence,
		TopPredictions: top,
	}
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
