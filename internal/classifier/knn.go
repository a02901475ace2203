package classifier

import (
	"fmt"
	"sort"
)

// KNN votes among the k stored samples nearest to the input by squared
// Euclidean distance. Ties go to the label of the closest neighbour.
type KNN struct {
	k        int
	samples  [][]int
	labels   []int
	features int
}

func NewKNN(k int, samples [][]int, labels []int) (*KNN, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: knn model has no samples", ErrArtifact)
	}
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("%w: %d samples, %d labels", ErrArtifact, len(samples), len(labels))
	}
	if k < 1 {
		k = 1
	}
	if k > len(samples) {
		k = len(samples)
	}
	features := len(samples[0])
	for i, s := range samples {
		if len(s) != features {
			return nil, fmt.Errorf("%w: sample %d has %d features, want %d", ErrArtifact, i, len(s), features)
		}
	}
	return &KNN{k: k, samples: samples, labels: labels, features: features}, nil
}

type neighbour struct {
	dist  int
	label int
}

func (m *KNN) Predict(features []int) (int, error) {
	if err := checkLength(features, m.features); err != nil {
		return 0, err
	}

	neighbours := make([]neighbour, len(m.samples))
	for i, s := range m.samples {
		d := 0
		for j, x := range features {
			diff := x - s[j]
			d += diff * diff
		}
		neighbours[i] = neighbour{dist: d, label: m.labels[i]}
	}
	sort.SliceStable(neighbours, func(a, b int) bool {
		return neighbours[a].dist < neighbours[b].dist
	})

	votes := make(map[int]int, m.k)
	for _, n := range neighbours[:m.k] {
		votes[n.label]++
	}

	// walk nearest first so the closest label wins a tie
	best, bestVotes := neighbours[0].label, 0
	for _, n := range neighbours[:m.k] {
		if v := votes[n.label]; v > bestVotes {
			best, bestVotes = n.label, v
		}
	}
	return best, nil
}
