package artifact

import (
	"encoding/json"
	"fmt"
)

// Forest is a predict-only tree ensemble. It is the re-export target for
// upstream forest classifiers: each tree is an array of nodes with split
// feature, threshold, child indices, and per-class counts at the leaves.
type Forest struct {
	Classes int        `json:"classes"`
	Trees   []TreeSpec `json:"trees"`
}

// TreeSpec is a flattened decision tree rooted at node 0.
type TreeSpec struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is one split or leaf. Left and Right are indices into the
// node array; a node with Left < 0 is a leaf and Value holds its class
// distribution.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// Type implements Model.
func (f *Forest) Type() string { return "forest" }

// NumClasses implements Model.
func (f *Forest) NumClasses() int { return f.Classes }

// Probabilities implements Model. Each tree votes with its leaf class
// distribution; the ensemble output is the normalized average.
func (f *Forest) Probabilities(x []float64) ([]float64, error) {
	if len(f.Trees) == 0 || f.Classes == 0 {
		return nil, fmt.Errorf("empty forest model")
	}

	out := make([]float64, f.Classes)
	for t := range f.Trees {
		leaf, err := f.Trees[t].walk(x)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}

		var total float64
		for _, v := range leaf {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range leaf {
			if c < f.Classes {
				out[c] += v / total
			}
		}
	}

	var sum float64
	for _, v := range out {
		sum += v
	}
	if sum == 0 {
		return nil, fmt.Errorf("forest produced no votes")
	}
	for c := range out {
		out[c] /= sum
	}
	return out, nil
}

func (t *TreeSpec) walk(x []float64) ([]float64, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", idx)
		}
		node := t.Nodes[idx]
		if node.Left < 0 {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(x) {
			return nil, fmt.Errorf("%w: split on feature %d of %d", ErrDimension, node.Feature, len(x))
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return nil, fmt.Errorf("cycle detected in tree")
}

func decodeForest(raw json.RawMessage) (Model, error) {
	var f Forest
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if f.Classes <= 0 || len(f.Trees) == 0 {
		return nil, fmt.Errorf("inconsistent forest parameters")
	}
	for i, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", i)
		}
	}
	return &f, nil
}
