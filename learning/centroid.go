package learning

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NearestCentroid predicts the class whose mean is closest. Probabilities are a softmax over the negative distances
// to each class mean. Classes without training rows have no mean and are never predicted.
type NearestCentroid struct {
	Centroids [][]float64
}

func (m *NearestCentroid) Fit(x mat.Matrix, y []int, classes int) error {
	r, _ := x.Dims()
	if r == 0 || len(y) != r {
		return errors.Errorf("cannot fit %d labels to %d rows", len(y), r)
	}
	m.Centroids = means(points(x), y, classes, nil)
	seen := make([]bool, classes)
	for _, l := range y {
		seen[l] = true
	}
	for k := range m.Centroids {
		if !seen[k] {
			m.Centroids[k] = nil
		}
	}
	return nil
}

func (m *NearestCentroid) Probabilities(x mat.Matrix) [][]float64 {
	p := points(x)
	prob := make([][]float64, len(p))
	for i, row := range p {
		prob[i] = make([]float64, len(m.Centroids))
		d := make([]float64, len(m.Centroids))
		min := math.Inf(1)
		for k, c := range m.Centroids {
			if len(c) == 0 {
				d[k] = math.Inf(1)
				continue
			}
			d[k] = math.Sqrt(sqDist(row, c))
			min = math.Min(min, d[k])
		}
		var sum float64
		for k := range d {
			if !math.IsInf(d[k], 1) {
				prob[i][k] = math.Exp(min - d[k])
			}
			sum += prob[i][k]
		}
		for k := range prob[i] {
			prob[i][k] /= sum
		}
	}
	return prob
}

// DummyClassifier predicts the class frequencies of the training target.
type DummyClassifier struct {
	Prior []float64
}

func (m *DummyClassifier) Fit(x mat.Matrix, y []int, classes int) error {
	if len(y) == 0 {
		return errors.New("cannot fit an empty target")
	}
	m.Prior = make([]float64, classes)
	for _, l := range y {
		m.Prior[l] += 1 / float64(len(y))
	}
	return nil
}

func (m *DummyClassifier) Probabilities(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	prob := make([][]float64, r)
	for i := range prob {
		prob[i] = append([]float64(nil), m.Prior...)
	}
	return prob
}
