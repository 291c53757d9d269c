// Package learning contains the models fitted during an experiment. Every model stores its fitted state in exported
// fields without maps so that it can be persisted with encoding/gob and encodes to the same bytes every time.
package learning

import (
	"encoding/gob"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Regressor predicts a continuous target.
type Regressor interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) []float64
}

// Classifier predicts one of a fixed number of classes. Classes are identified by their index.
type Classifier interface {
	Fit(x mat.Matrix, y []int, classes int) error
	// Probabilities returns, for each row, the probability of each class.
	Probabilities(x mat.Matrix) [][]float64
}

// Clusterer groups rows into clusters.
type Clusterer interface {
	// Fit fits the model and returns the cluster of each training row.
	Fit(x mat.Matrix) ([]int, error)
	// Assign returns the cluster of each row of previously unseen data.
	Assign(x mat.Matrix) []int
}

// ErrNotFitted is returned when a model is used before being fitted.
var ErrNotFitted = errors.New("model has not been fitted")

var register sync.Once

// Register registers every model with encoding/gob. It must be called before models are encoded or decoded.
func Register() {
	register.Do(func() {
		gob.Register(&LinearRegression{})
		gob.Register(&KNNRegressor{})
		gob.Register(&DummyRegressor{})
		gob.Register(&KNNClassifier{})
		gob.Register(&NearestCentroid{})
		gob.Register(&DummyClassifier{})
		gob.Register(&KMeans{})
		gob.Register(&AffinityPropagation{})
		gob.Register(&Birch{})
	})
}

// Predict returns the most probable class of each row.
func Predict(c Classifier, x mat.Matrix) []int {
	p := c.Probabilities(x)
	y := make([]int, len(p))
	for i, row := range p {
		for k, v := range row {
			if v > row[y[i]] {
				y[i] = k
			}
		}
	}
	return y
}
