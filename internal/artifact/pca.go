package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PCA is a fitted linear projection: subtract the training mean, then
// project onto the principal component rows.
type PCA struct {
	Mean       []float64   `json:"mean"`
	Components [][]float64 `json:"components"` // k rows of length n
}

// InputWidth reports the feature width the projection was fit on.
func (p *PCA) InputWidth() int {
	return len(p.Mean)
}

// OutputWidth reports the number of components.
func (p *PCA) OutputWidth() int {
	return len(p.Components)
}

// Transform projects a scaled vector down to component space.
func (p *PCA) Transform(x []float64) ([]float64, error) {
	n := len(p.Mean)
	if len(x) != n {
		return nil, fmt.Errorf("%w: pca fit on %d features, got %d", ErrDimension, n, len(x))
	}

	centered := make([]float64, n)
	for i, v := range x {
		centered[i] = v - p.Mean[i]
	}

	k := len(p.Components)
	flat := make([]float64, 0, k*n)
	for _, row := range p.Components {
		if len(row) != n {
			return nil, fmt.Errorf("%w: pca component width %d, want %d", ErrDimension, len(row), n)
		}
		flat = append(flat, row...)
	}

	comp := mat.NewDense(k, n, flat)
	var out mat.VecDense
	out.MulVec(comp, mat.NewVecDense(n, centered))

	result := make([]float64, k)
	for i := range result {
		result[i] = out.AtVec(i)
	}
	return result, nil
}

// FitPCA fits a k-component projection over the sample rows via thin SVD
// of the centered sample matrix.
func FitPCA(samples [][]float64, k int) (*PCA, error) {
	m := len(samples)
	if m == 0 {
		return nil, fmt.Errorf("fit pca: no samples")
	}
	n := len(samples[0])
	if k <= 0 || k > n || k > m {
		return nil, fmt.Errorf("fit pca: %d components not fittable from %dx%d data", k, m, n)
	}

	mean := make([]float64, n)
	for _, row := range samples {
		if len(row) != n {
			return nil, fmt.Errorf("fit pca: ragged sample width %d, want %d", len(row), n)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(m)
	}

	centered := mat.NewDense(m, n, nil)
	for r, row := range samples {
		for c, v := range row {
			centered.Set(r, c, v-mean[c])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return nil, fmt.Errorf("fit pca: svd did not converge")
	}

	var v mat.Dense
	svd.VTo(&v) // n x min(m,n); columns are right singular vectors

	components := make([][]float64, k)
	for i := 0; i < k; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = v.At(j, i)
		}
		components[i] = row
	}

	return &PCA{Mean: mean, Components: components}, nil
}

// Save writes the projection to a JSON file.
func (p *PCA) Save(path string) error {
	return saveJSON(path, p)
}

// LoadPCA reads a projection from a JSON file.
func LoadPCA(path string) (*PCA, error) {
	var p PCA
	if err := loadJSON(path, &p); err != nil {
		return nil, err
	}
	if len(p.Mean) == 0 || len(p.Components) == 0 {
		return nil, fmt.Errorf("%w: %s: empty pca", ErrArtifactLoad, path)
	}
	for _, row := range p.Components {
		if len(row) != len(p.Mean) {
			return nil, fmt.Errorf("%w: %s: component width %d, want %d", ErrArtifactLoad, path, len(row), len(p.Mean))
		}
	}
	return &p, nil
}
