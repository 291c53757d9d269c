package learning

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/scigo/sklearn/cluster"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultClusters is the number of clusters used when K is not set.
	DefaultClusters = 4
	// DefaultSeed seeds the random initialisation of clusterers.
	DefaultSeed    = 123
	defaultMaxIter = 300
	tolerance      = 1e-4
)

// KMeans partitions rows into K clusters, each represented by the mean of its rows. Centroids are initialised with
// k-means++ from a seeded source, so fitting is deterministic.
type KMeans struct {
	K         int
	Seed      int64
	MaxIter   int
	Centroids [][]float64
}

func (m *KMeans) Fit(x mat.Matrix) ([]int, error) {
	p := points(x)
	if len(p) == 0 {
		return nil, errors.New("cannot cluster an empty matrix")
	}
	if m.K <= 0 {
		m.K = DefaultClusters
	}
	if m.MaxIter <= 0 {
		m.MaxIter = defaultMaxIter
	}
	var err error
	m.Centroids, err = kmeans(p, m.K, m.Seed, m.MaxIter)
	if err != nil {
		return nil, err
	}
	return assign(p, m.Centroids), nil
}

func (m *KMeans) Assign(x mat.Matrix) []int {
	return assign(points(x), m.Centroids)
}

func assign(p [][]float64, centres [][]float64) []int {
	labels := make([]int, len(p))
	for i, row := range p {
		labels[i] = nearest(row, centres)
	}
	return labels
}

// construct guards the estimator constructor, which lazily sets an unsynchronised package logger.
var construct sync.Mutex

// kmeans fits k centres to p with scigo's k-means++ initialised mini-batch k-means. Each batch is the whole of p.
func kmeans(p [][]float64, k int, seed int64, maxIter int) ([][]float64, error) {
	if k > len(p) {
		k = len(p)
	}
	x := mat.NewDense(len(p), len(p[0]), nil)
	for i, row := range p {
		x.SetRow(i, row)
	}

	construct.Lock()
	// Negative seeds would be replaced by the clock.
	estimator := cluster.NewMiniBatchKMeans(
		cluster.WithKMeansNClusters(k),
		cluster.WithKMeansInit("k-means++"),
		cluster.WithKMeansMaxIter(maxIter),
		cluster.WithKMeansBatchSize(len(p)),
		cluster.WithKMeansRandomState(seed&math.MaxInt64),
		cluster.WithKMeansTol(tolerance),
	)
	construct.Unlock()

	if err := estimator.Fit(x, nil); err != nil {
		return nil, errors.Wrap(err, "could not fit k-means")
	}
	return estimator.ClusterCenters(), nil
}
