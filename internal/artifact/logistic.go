package artifact

import (
	"encoding/json"
	"fmt"
	"math"
)

// Logistic is a multinomial logistic-regression classifier: a linear score
// per class followed by softmax.
type Logistic struct {
	Weights    [][]float64 `json:"weights"` // one row per class
	Intercepts []float64   `json:"intercepts"`
}

// Type implements Model.
func (l *Logistic) Type() string { return "logistic" }

// NumClasses implements Model.
func (l *Logistic) NumClasses() int { return len(l.Weights) }

// Probabilities implements Model.
func (l *Logistic) Probabilities(x []float64) ([]float64, error) {
	if len(l.Weights) == 0 {
		return nil, fmt.Errorf("logistic model has no classes")
	}
	width := len(l.Weights[0])
	if len(x) != width {
		return nil, fmt.Errorf("%w: model fit on %d features, got %d", ErrDimension, width, len(x))
	}

	scores := make([]float64, len(l.Weights))
	maxScore := math.Inf(-1)
	for c, row := range l.Weights {
		s := l.Intercepts[c]
		for i, w := range row {
			s += w * x[i]
		}
		scores[c] = s
		if s > maxScore {
			maxScore = s
		}
	}

	// Softmax with max subtraction for numeric stability.
	var sum float64
	for c, s := range scores {
		e := math.Exp(s - maxScore)
		scores[c] = e
		sum += e
	}
	for c := range scores {
		scores[c] /= sum
	}
	return scores, nil
}

func decodeLogistic(raw json.RawMessage) (Model, error) {
	var l Logistic
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	if len(l.Weights) == 0 || len(l.Weights) != len(l.Intercepts) {
		return nil, fmt.Errorf("inconsistent logistic parameters")
	}
	width := len(l.Weights[0])
	for _, row := range l.Weights {
		if len(row) != width {
			return nil, fmt.Errorf("ragged logistic weight rows")
		}
	}
	return &l, nil
}

// FitLogistic trains a softmax classifier by batch gradient descent.
// Labels are class indices in [0, numClasses).
func FitLogistic(samples [][]float64, labels []int, numClasses, epochs int, learningRate float64) (*Logistic, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, fmt.Errorf("fit logistic: %d samples, %d labels", len(samples), len(labels))
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("fit logistic: need at least 2 classes, got %d", numClasses)
	}
	width := len(samples[0])
	for _, row := range samples {
		if len(row) != width {
			return nil, fmt.Errorf("fit logistic: ragged sample width %d, want %d", len(row), width)
		}
	}
	for _, y := range labels {
		if y < 0 || y >= numClasses {
			return nil, fmt.Errorf("fit logistic: label %d out of range", y)
		}
	}
	if epochs <= 0 {
		epochs = 200
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}

	model := &Logistic{
		Weights:    make([][]float64, numClasses),
		Intercepts: make([]float64, numClasses),
	}
	for c := range model.Weights {
		model.Weights[c] = make([]float64, width)
	}

	n := float64(len(samples))
	gradW := make([][]float64, numClasses)
	gradB := make([]float64, numClasses)
	for c := range gradW {
		gradW[c] = make([]float64, width)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		for c := range gradW {
			gradB[c] = 0
			for i := range gradW[c] {
				gradW[c][i] = 0
			}
		}

		for s, x := range samples {
			probs, err := model.Probabilities(x)
			if err != nil {
				return nil, err
			}
			for c := range probs {
				d := probs[c]
				if c == labels[s] {
					d -= 1
				}
				gradB[c] += d
				for i, xv := range x {
					gradW[c][i] += d * xv
				}
			}
		}

		for c := range model.Weights {
			model.Intercepts[c] -= learningRate * gradB[c] / n
			for i := range model.Weights[c] {
				model.Weights[c][i] -= learningRate * gradW[c][i] / n
			}
		}
	}

	return model, nil
}
