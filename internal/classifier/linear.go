package classifier

import "fmt"

// Linear is a one-vs-rest linear model: the predicted class is the one
// with the largest decision value coef·x + intercept.
type Linear struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	features  int
}

func NewLinear(classes []int, coef [][]float64, intercept []float64) (*Linear, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: linear model needs at least two classes", ErrArtifact)
	}
	if len(coef) != len(classes) || len(intercept) != len(classes) {
		return nil, fmt.Errorf("%w: %d classes, %d coef rows, %d intercepts", ErrArtifact, len(classes), len(coef), len(intercept))
	}
	features := len(coef[0])
	if features == 0 {
		return nil, fmt.Errorf("%w: empty coefficient row", ErrArtifact)
	}
	for i, row := range coef {
		if len(row) != features {
			return nil, fmt.Errorf("%w: coef row %d has %d weights, want %d", ErrArtifact, i, len(row), features)
		}
	}
	return &Linear{classes: classes, coef: coef, intercept: intercept, features: features}, nil
}

func (m *Linear) Predict(features []int) (int, error) {
	if err := checkLength(features, m.features); err != nil {
		return 0, err
	}

	best := 0
	bestScore := 0.0
	for c, row := range m.coef {
		score := m.intercept[c]
		for i, x := range features {
			if x != 0 {
				score += row[i] * float64(x)
			}
		}
		if c == 0 || score > bestScore {
			best, bestScore = c, score
		}
	}
	return m.classes[best], nil
}
