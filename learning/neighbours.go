package learning

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultK is the number of neighbours used when K is not set.
const DefaultK = 5

// neighbours returns the indices of the k points closest to p, closest first. Equidistant points are ordered by
// index.
func neighbours(p []float64, points [][]float64, k int) []int {
	idx := make([]int, len(points))
	d := make([]float64, len(points))
	for i, q := range points {
		idx[i] = i
		d[i] = sqDist(p, q)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d[idx[a]] < d[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

func neighbourhood(k int) int {
	if k <= 0 {
		return DefaultK
	}
	return k
}

// KNNRegressor predicts the mean target of the K nearest training rows.
type KNNRegressor struct {
	K       int
	Points  [][]float64
	Targets []float64
}

func (m *KNNRegressor) Fit(x mat.Matrix, y []float64) error {
	r, _ := x.Dims()
	if r == 0 || len(y) != r {
		return errors.Errorf("cannot fit %d targets to %d rows", len(y), r)
	}
	m.K = neighbourhood(m.K)
	m.Points = points(x)
	m.Targets = append([]float64(nil), y...)
	return nil
}

func (m *KNNRegressor) Predict(x mat.Matrix) []float64 {
	p := points(x)
	y := make([]float64, len(p))
	for i, row := range p {
		n := neighbours(row, m.Points, m.K)
		for _, j := range n {
			y[i] += m.Targets[j]
		}
		y[i] /= float64(len(n))
	}
	return y
}

// KNNClassifier predicts the class distribution of the K nearest training rows.
type KNNClassifier struct {
	K       int
	Classes int
	Points  [][]float64
	Labels  []int
}

func (m *KNNClassifier) Fit(x mat.Matrix, y []int, classes int) error {
	r, _ := x.Dims()
	if r == 0 || len(y) != r {
		return errors.Errorf("cannot fit %d labels to %d rows", len(y), r)
	}
	m.K = neighbourhood(m.K)
	m.Classes = classes
	m.Points = points(x)
	m.Labels = append([]int(nil), y...)
	return nil
}

func (m *KNNClassifier) Probabilities(x mat.Matrix) [][]float64 {
	p := points(x)
	prob := make([][]float64, len(p))
	for i, row := range p {
		prob[i] = make([]float64, m.Classes)
		n := neighbours(row, m.Points, m.K)
		for _, j := range n {
			prob[i][m.Labels[j]] += 1 / float64(len(n))
		}
	}
	return prob
}
