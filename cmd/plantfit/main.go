// Command plantfit fits the classification pipeline from a directory of
// labeled plant images and writes the portable artifacts.
//
// The data directory holds one subdirectory per class:
//
//	data/
//	├── neem/
//	│   ├── img001.jpg
//	│   └── img002.jpg
//	└── tulsi/
//	    └── img001.jpg
//
// Usage: plantfit [flags] <data-dir> [models-dir]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mediplant/internal/artifact"
	"mediplant/internal/feature"
	"mediplant/internal/plant"
)

func main() {
	resolution := flag.Int("res", feature.DefaultResolution, "resize resolution the features are extracted at")
	components := flag.Int("components", 50, "number of PCA components")
	epochs := flag.Int("epochs", 300, "gradient-descent epochs for the classifier")
	rate := flag.Float64("rate", 0.1, "gradient-descent learning rate")
	pure := flag.Bool("pure", false, "use the pure Go extraction path instead of OpenCV")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <data-dir> [models-dir]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFits scaler, PCA, and classifier from labeled images.\n")
		fmt.Fprintf(os.Stderr, "Default models dir: models\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	dataDir := flag.Arg(0)
	modelsDir := "models"
	if flag.NArg() >= 2 {
		modelsDir = flag.Arg(1)
	}

	cfg := feature.Config{Resolution: *resolution}

	labels, samples, targets, err := extractDataset(dataDir, cfg, *pure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d samples across %d classes (%d features each)\n",
		len(samples), len(labels), cfg.Length())

	scaler, err := artifact.FitScaler(samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fitting scaler: %v\n", err)
		os.Exit(1)
	}

	scaled := make([][]float64, len(samples))
	for i, row := range samples {
		if scaled[i], err = scaler.Transform(row); err != nil {
			fmt.Fprintf(os.Stderr, "Error scaling sample %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	k := *components
	if k > len(scaled) {
		k = len(scaled)
	}
	if k > cfg.Length() {
		k = cfg.Length()
	}
	fmt.Printf("Fitting PCA with %d components...\n", k)
	pca, err := artifact.FitPCA(scaled, k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fitting PCA: %v\n", err)
		os.Exit(1)
	}

	reduced := make([][]float64, len(scaled))
	for i, row := range scaled {
		if reduced[i], err = pca.Transform(row); err != nil {
			fmt.Fprintf(os.Stderr, "Error reducing sample %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Training classifier (%d epochs, rate %.3f)...\n", *epochs, *rate)
	model, err := artifact.FitLogistic(reduced, targets, len(labels), *epochs, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training classifier: %v\n", err)
		os.Exit(1)
	}

	correct := 0
	for i, row := range reduced {
		probs, err := model.Probabilities(row)
		if err != nil {
			continue
		}
		best := 0
		for c := range probs {
			if probs[c] > probs[best] {
				best = c
			}
		}
		if best == targets[i] {
			correct++
		}
	}
	fmt.Printf("Training accuracy: %.1f%% (%d/%d)\n",
		100*float64(correct)/float64(len(reduced)), correct, len(reduced))

	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating models dir: %v\n", err)
		os.Exit(1)
	}
	if err := saveArtifacts(modelsDir, cfg, scaler, pca, model, labels); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving artifacts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Artifacts written to %s:\n", modelsDir)
	fmt.Printf("  %s, %s, %s, %s, %s\n",
		artifact.ManifestFilename, artifact.ScalerFilename,
		artifact.ReducerFilename, artifact.ModelFilename, artifact.LabelsFilename)
}

// extractDataset walks the class subdirectories and extracts one
// descriptor per image.
func extractDataset(dataDir string, cfg feature.Config, pure bool) (plant.Labels, [][]float64, []int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read data dir: %w", err)
	}

	var classes []string
	for _, e := range entries {
		if e.IsDir() {
			classes = append(classes, e.Name())
		}
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, nil, nil, fmt.Errorf("need at least 2 class directories in %s, found %d", dataDir, len(classes))
	}

	var samples [][]float64
	var targets []int

	for classIdx, class := range classes {
		classDir := filepath.Join(dataDir, class)
		images, err := os.ReadDir(classDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read class dir %s: %w", class, err)
		}

		count := 0
		for _, img := range images {
			if img.IsDir() || !isImageFile(img.Name()) {
				continue
			}
			path := filepath.Join(classDir, img.Name())

			var vec []float64
			if pure {
				vec, err = feature.ExtractFile(path, cfg)
			} else {
				vec, err = feature.ExtractFileMat(path, cfg)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "  skipping %s: %v\n", path, err)
				continue
			}

			samples = append(samples, vec)
			targets = append(targets, classIdx)
			count++
		}
		fmt.Printf("  %s: %d images\n", class, count)
	}

	if len(samples) == 0 {
		return nil, nil, nil, fmt.Errorf("no usable images found under %s", dataDir)
	}
	return plant.Labels(classes), samples, targets, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp":
		return true
	default:
		return false
	}
}

func saveArtifacts(dir string, cfg feature.Config, scaler *artifact.Scaler, pca *artifact.PCA, model artifact.Model, labels plant.Labels) error {
	if err := artifact.DefaultManifest(cfg.Resolution).Save(dir); err != nil {
		return err
	}
	if err := scaler.Save(filepath.Join(dir, artifact.ScalerFilename)); err != nil {
		return err
	}
	if err := pca.Save(filepath.Join(dir, artifact.ReducerFilename)); err != nil {
		return err
	}
	if err := artifact.SaveModel(filepath.Join(dir, artifact.ModelFilename), model); err != nil {
		return err
	}
	return labels.Save(filepath.Join(dir, artifact.LabelsFilename))
}
