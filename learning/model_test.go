package learning_test

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/hscells/autolearn/learning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// blobs are two well separated groups of three rows.
var blobs = mat.NewDense(6, 2, []float64{
	0, 0,
	0.1, 0.1,
	0, 0.2,
	5, 5,
	5.1, 5,
	5, 5.2,
})

func TestLinearRegression(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 1, 1, 2, 2, 2, 2, 3})
	y := []float64{6, 8, 9, 11} // y = 1*x0 + 2*x1 + 3

	m := &learning.LinearRegression{}
	require.NoError(t, m.Fit(x, y))
	assert.InDelta(t, 1, m.Coef[0], 1e-6)
	assert.InDelta(t, 2, m.Coef[1], 1e-6)
	assert.InDelta(t, 3, m.Intercept, 1e-6)

	p := m.Predict(mat.NewDense(1, 2, []float64{3, 5}))
	assert.InDelta(t, 16, p[0], 1e-5)

	ridge := &learning.LinearRegression{Alpha: 1}
	require.NoError(t, ridge.Fit(x, y))
	assert.Less(t, ridge.Coef[1], m.Coef[1])

	assert.Error(t, m.Fit(x, []float64{1}))
}

func TestLinearRegressionCollinear(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 2, 2, 4, 3, 6})
	m := &learning.LinearRegression{}
	require.NoError(t, m.Fit(x, []float64{1, 2, 3}))
	p := m.Predict(x)
	assert.InDelta(t, 2, p[1], 1e-3)
}

func TestLinearRegressionOneHot(t *testing.T) {
	// Two one-hot levels alongside the intercept make the normal equations singular.
	x := mat.NewDense(4, 2, []float64{1, 0, 0, 1, 1, 0, 0, 1})
	m := &learning.LinearRegression{}
	require.NoError(t, m.Fit(x, []float64{1, 3, 1, 3}))
	p := m.Predict(x)
	assert.InDelta(t, 1, p[0], 1e-3)
	assert.InDelta(t, 3, p[1], 1e-3)
}

func TestKMeansMoreClustersThanRows(t *testing.T) {
	m := &learning.KMeans{K: 10, Seed: learning.DefaultSeed}
	labels, err := m.Fit(blobs)
	require.NoError(t, err)
	assert.Len(t, labels, 6)
	assert.Len(t, m.Centroids, 6)
}

func TestKNNRegressor(t *testing.T) {
	m := &learning.KNNRegressor{K: 2}
	require.NoError(t, m.Fit(blobs, []float64{1, 1, 1, 9, 9, 9}))
	p := m.Predict(mat.NewDense(2, 2, []float64{0, 0.1, 5, 5.1}))
	assert.Equal(t, []float64{1, 9}, p)
}

func TestDummyRegressor(t *testing.T) {
	m := &learning.DummyRegressor{}
	require.NoError(t, m.Fit(blobs, []float64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []float64{3.5}, m.Predict(mat.NewDense(1, 2, nil)))
}

func TestClassifiers(t *testing.T) {
	y := []int{0, 0, 0, 1, 1, 1}
	query := mat.NewDense(2, 2, []float64{0.05, 0.05, 5, 5.1})

	for name, c := range map[string]learning.Classifier{
		"knn": &learning.KNNClassifier{K: 3},
		"nc":  &learning.NearestCentroid{},
	} {
		require.NoError(t, c.Fit(blobs, y, 2), name)
		assert.Equal(t, []int{0, 1}, learning.Predict(c, query), name)
		for _, p := range c.Probabilities(query) {
			assert.InDelta(t, 1, p[0]+p[1], 1e-9, name)
		}
	}

	d := &learning.DummyClassifier{}
	require.NoError(t, d.Fit(blobs, []int{0, 1, 1, 1, 1, 0}, 2))
	assert.Equal(t, []int{1, 1}, learning.Predict(d, query))
}

func TestNearestCentroidUnseenClass(t *testing.T) {
	m := &learning.NearestCentroid{}
	require.NoError(t, m.Fit(blobs, []int{0, 0, 0, 2, 2, 2}, 3))
	p := m.Probabilities(mat.NewDense(1, 2, []float64{0, 0}))
	assert.Equal(t, 0.0, p[0][1])
	assert.Equal(t, []int{0}, learning.Predict(m, mat.NewDense(1, 2, []float64{0, 0})))
}

func TestClusterers(t *testing.T) {
	for name, c := range map[string]learning.Clusterer{
		"kmeans": &learning.KMeans{K: 2, Seed: learning.DefaultSeed},
		"ap":     &learning.AffinityPropagation{Seed: learning.DefaultSeed},
		"birch":  &learning.Birch{K: 2, Seed: learning.DefaultSeed},
	} {
		labels, err := c.Fit(blobs)
		require.NoError(t, err, name)
		require.Len(t, labels, 6, name)

		// Rows of the same blob share a cluster, rows of different blobs do not.
		assert.Equal(t, labels[0], labels[1], name)
		assert.Equal(t, labels[0], labels[2], name)
		assert.Equal(t, labels[3], labels[4], name)
		assert.Equal(t, labels[3], labels[5], name)
		assert.NotEqual(t, labels[0], labels[3], name)

		assigned := c.Assign(mat.NewDense(2, 2, []float64{0.05, 0, 5.05, 5.1}))
		assert.Equal(t, []int{labels[0], labels[3]}, assigned, name)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	a := &learning.KMeans{K: 2, Seed: 7}
	b := &learning.KMeans{K: 2, Seed: 7}
	la, err := a.Fit(blobs)
	require.NoError(t, err)
	lb, err := b.Fit(blobs)
	require.NoError(t, err)
	assert.Equal(t, la, lb)
	assert.Equal(t, a.Centroids, b.Centroids)
}

func TestModelsEncode(t *testing.T) {
	learning.Register()
	m := &learning.KMeans{K: 2, Seed: learning.DefaultSeed}
	_, err := m.Fit(blobs)
	require.NoError(t, err)

	var in interface{} = m
	var first, second bytes.Buffer
	require.NoError(t, gob.NewEncoder(&first).Encode(&in))
	require.NoError(t, gob.NewEncoder(&second).Encode(&in))
	assert.Equal(t, first.Bytes(), second.Bytes())

	var out interface{}
	require.NoError(t, gob.NewDecoder(&first).Decode(&out))
	assert.Equal(t, m, out)
}
