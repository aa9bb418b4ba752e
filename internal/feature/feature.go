// Package feature derives fixed-order numeric descriptors from plant
// images: flattened RGB pixels of a resized square image, HSV and Lab
// channel statistics, and Sobel gradient statistics. The layout must match
// what the persisted scaler was fit on, so the resize resolution is an
// explicit configuration value rather than a package constant.
package feature

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"mediplant/pkg/colorutil"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/tiff"
)

// DefaultResolution is the resize resolution used when no pipeline
// manifest specifies one. The persisted artifacts in circulation were fit
// at 64; a mismatched resolution makes reconciliation lossy, so loaders
// should always prefer the manifest value.
const DefaultResolution = 64

// Config selects the feature layout.
type Config struct {
	Resolution int // resize target, pixels per side
}

// DefaultConfig returns the layout used by the shipped artifacts.
func DefaultConfig() Config {
	return Config{Resolution: DefaultResolution}
}

func (c Config) resolution() int {
	if c.Resolution <= 0 {
		return DefaultResolution
	}
	return c.Resolution
}

// summaryLength is the number of non-pixel features: HSV mean+std (6),
// Lab mean+std (6), Sobel x/y mean+std (4).
const summaryLength = 16

// VectorLength returns the descriptor length for a resolution: 3·R² pixel
// values plus the 16 summary statistics.
func VectorLength(resolution int) int {
	return 3*resolution*resolution + summaryLength
}

// Length returns the descriptor length produced under this config.
func (c Config) Length() int {
	return VectorLength(c.resolution())
}

// channelStats accumulates per-channel mean and population standard
// deviation over three channels.
type channelStats struct {
	n    float64
	sum  [3]float64
	sumS [3]float64
}

func (s *channelStats) add(a, b, c float64) {
	s.n++
	s.sum[0] += a
	s.sum[1] += b
	s.sum[2] += c
	s.sumS[0] += a * a
	s.sumS[1] += b * b
	s.sumS[2] += c * c
}

func (s *channelStats) mean(i int) float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum[i] / s.n
}

func (s *channelStats) std(i int) float64 {
	if s.n == 0 {
		return 0
	}
	m := s.sum[i] / s.n
	v := s.sumS[i]/s.n - m*m
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// Extract computes the descriptor for a decoded image. The order is fixed:
// RGB pixels row-major channel-interleaved, HSV means then stds, Lab means
// then stds, Sobel-x mean/std then Sobel-y mean/std.
func Extract(img image.Image, cfg Config) []float64 {
	r := cfg.resolution()
	resized := resize.Resize(uint(r), uint(r), img, resize.Lanczos3)

	vec := make([]float64, 0, VectorLength(r))
	gray := make([]float64, r*r)

	var hsv, lab channelStats

	for y := 0; y < r; y++ {
		for x := 0; x < r; x++ {
			pr, pg, pb, _ := resized.At(x, y).RGBA()
			fr := float64(pr >> 8)
			fg := float64(pg >> 8)
			fb := float64(pb >> 8)

			vec = append(vec, fr, fg, fb)

			h, s, v := colorutil.RGBToHSV(fr, fg, fb)
			hsv.add(h, s, v)

			l, a, b := colorutil.RGBToLab(fr, fg, fb)
			lab.add(l, a, b)

			gray[y*r+x] = colorutil.RGBToGray(fr, fg, fb)
		}
	}

	vec = append(vec, hsv.mean(0), hsv.mean(1), hsv.mean(2))
	vec = append(vec, hsv.std(0), hsv.std(1), hsv.std(2))
	vec = append(vec, lab.mean(0), lab.mean(1), lab.mean(2))
	vec = append(vec, lab.std(0), lab.std(1), lab.std(2))

	gxMean, gxStd, gyMean, gyStd := sobelStats(gray, r, r)
	vec = append(vec, gxMean, gxStd, gyMean, gyStd)

	return vec
}

// ExtractFile decodes an image file and computes its descriptor. Returns
// ErrImageDecode when the file is missing, unreadable, or not a raster
// image.
func ExtractFile(path string, cfg Config) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}

	return Extract(img, cfg), nil
}

// Reconcile forces a descriptor to the width a fitted transformer expects.
// Longer vectors are truncated to the first want entries, dropping the
// trailing texture and color summaries first; shorter vectors are
// right-padded with zeros. Existing entries are never reordered, and the
// operation is idempotent once lengths match. It never fails.
func Reconcile(vec []float64, want int) []float64 {
	if want < 0 {
		want = 0
	}
	switch {
	case len(vec) > want:
		return vec[:want]
	case len(vec) < want:
		out := make([]float64, want)
		copy(out, vec)
		return out
	default:
		return vec
	}
}
