package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrPrediction = errors.New("prediction error")
	ErrArtifact   = errors.New("invalid classifier artifact")
)

// Classifier maps a flattened feature vector to a digit label.
// Implementations are read-only after construction and safe for concurrent use.
type Classifier interface {
	Predict(features []int) (int, error)
}

const (
	KindLinear = "linear"
	KindKNN    = "knn"
)

// artifact is the on-disk JSON layout. Which fields are set depends on Kind.
type artifact struct {
	Kind string `json:"kind"`
	// linear
	Classes   []int       `json:"classes,omitempty"`
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
	// knn
	K       int     `json:"k,omitempty"`
	Samples [][]int `json:"samples,omitempty"`
	Labels  []int   `json:"labels,omitempty"`
}

// Load reads a classifier artifact from path.
func Load(path string) (Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier artifact: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a classifier artifact.
func Parse(raw []byte) (Classifier, error) {
	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifact, err)
	}

	switch a.Kind {
	case KindLinear:
		return NewLinear(a.Classes, a.Coef, a.Intercept)
	case KindKNN:
		return NewKNN(a.K, a.Samples, a.Labels)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrArtifact, a.Kind)
	}
}

func checkLength(features []int, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: expected %d features, got %d", ErrPrediction, want, len(features))
	}
	return nil
}
