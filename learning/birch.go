package learning

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultThreshold is the largest radius a BIRCH subcluster may grow to.
const DefaultThreshold = 0.5

// Birch summarises rows into subclusters no wider than Threshold, then groups the subcluster centroids into K
// clusters with k-means.
type Birch struct {
	Threshold   float64
	K           int
	Seed        int64
	Subclusters [][]float64
	Centroids   [][]float64
}

// feature is the clustering feature of a subcluster: its size, linear sum and squared sum.
type feature struct {
	n  float64
	ls []float64
	ss float64
}

func (f feature) centroid() []float64 {
	c := append([]float64(nil), f.ls...)
	floats.Scale(1/f.n, c)
	return c
}

// radius returns the radius the subcluster would have after absorbing p.
func (f feature) radius(p []float64) float64 {
	n := f.n + 1
	ls := append([]float64(nil), f.ls...)
	floats.Add(ls, p)
	ss := f.ss + floats.Dot(p, p)
	floats.Scale(1/n, ls)
	return math.Sqrt(math.Max(0, ss/n-floats.Dot(ls, ls)))
}

func (m *Birch) Fit(x mat.Matrix) ([]int, error) {
	p := points(x)
	if len(p) == 0 {
		return nil, errors.New("cannot cluster an empty matrix")
	}
	if m.Threshold <= 0 {
		m.Threshold = DefaultThreshold
	}
	if m.K <= 0 {
		m.K = DefaultClusters
	}

	var features []feature
	var centres [][]float64
	for _, row := range p {
		if len(features) > 0 {
			j := nearest(row, centres)
			if features[j].radius(row) <= m.Threshold {
				features[j].n++
				floats.Add(features[j].ls, row)
				features[j].ss += floats.Dot(row, row)
				centres[j] = features[j].centroid()
				continue
			}
		}
		features = append(features, feature{n: 1, ls: append([]float64(nil), row...), ss: floats.Dot(row, row)})
		centres = append(centres, append([]float64(nil), row...))
	}

	m.Subclusters = centres
	var err error
	m.Centroids, err = kmeans(centres, m.K, m.Seed, defaultMaxIter)
	if err != nil {
		return nil, err
	}
	return m.Assign(x), nil
}

func (m *Birch) Assign(x mat.Matrix) []int {
	return assign(points(x), m.Centroids)
}
