package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// Model maps a reduced feature vector to a probability distribution over
// class indices. Implementations are immutable after load and safe for
// concurrent use.
type Model interface {
	// Type identifies the model family for serialization.
	Type() string
	// NumClasses reports the number of classes the model distinguishes.
	NumClasses() int
	// Probabilities returns one probability per class, summing to 1.
	Probabilities(x []float64) ([]float64, error)
}

// modelEnvelope wraps a persisted model with its family tag so the right
// decoder can be selected at load time.
type modelEnvelope struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type modelDecoder func(json.RawMessage) (Model, error)

var modelDecoders = map[string]modelDecoder{
	"logistic": decodeLogistic,
	"forest":   decodeForest,
}

// SaveModel writes a model to a JSON file with its family tag.
func SaveModel(path string, m Model) error {
	params, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model params: %w", err)
	}
	return saveJSON(path, modelEnvelope{Type: m.Type(), Params: params})
}

// LoadModel reads a model from a JSON file, dispatching on the family tag.
func LoadModel(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	var env modelEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}

	decode, ok := modelDecoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown model type %q", ErrArtifactLoad, path, env.Type)
	}

	m, err := decode(env.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}
	return m, nil
}
