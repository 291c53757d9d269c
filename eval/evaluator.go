// Package eval contains the measures candidates are evaluated with. Each measure is an evaluator with a name, which
// is the name of the metric column it produces.
package eval

import (
	"github.com/hscells/autolearn"
	"gonum.org/v1/gonum/mat"
)

// RegressionEvaluator scores predictions of a continuous target.
type RegressionEvaluator interface {
	Score(actual, predicted []float64) float64
	Name() string
}

// ClassificationEvaluator scores predictions of a categorical target.
type ClassificationEvaluator interface {
	Score(c Classification) float64
	Name() string
}

// ClusteringEvaluator scores an assignment of rows to clusters.
type ClusteringEvaluator interface {
	Score(x mat.Matrix, labels []int) float64
	Name() string
}

var (
	// RegressionMeasures are the measures regression candidates are evaluated with.
	RegressionMeasures = []RegressionEvaluator{MAE, MSE, RMSE, R2, MAPE}
	// ClassificationMeasures are the measures classification candidates are evaluated with.
	ClassificationMeasures = []ClassificationEvaluator{Accuracy, AUC, Recall, Precision, F1}
	// ClusteringMeasures are the measures clustering candidates are evaluated with.
	ClusteringMeasures = []ClusteringEvaluator{Silhouette, CalinskiHarabasz, DaviesBouldin}
)

// lower lists the measures for which a smaller value is better.
var lower = map[string]bool{
	MAE.Name():           true,
	MSE.Name():           true,
	RMSE.Name():          true,
	MAPE.Name():          true,
	DaviesBouldin.Name(): true,
}

// LowerIsBetter reports whether smaller values of the named measure are better.
func LowerIsBetter(name string) bool {
	return lower[name]
}

// Better reports whether a is a better value than b for the named measure.
func Better(name string, a, b float64) bool {
	if LowerIsBetter(name) {
		return a < b
	}
	return a > b
}

// EvaluateRegression scores predictions with each evaluator, in order.
func EvaluateRegression(evaluators []RegressionEvaluator, actual, predicted []float64) autolearn.Metrics {
	m := make(autolearn.Metrics, len(evaluators))
	for i, e := range evaluators {
		m[i] = autolearn.Metric{Name: e.Name(), Value: e.Score(actual, predicted)}
	}
	return m
}

// EvaluateClassification scores predictions with each evaluator, in order.
func EvaluateClassification(evaluators []ClassificationEvaluator, c Classification) autolearn.Metrics {
	m := make(autolearn.Metrics, len(evaluators))
	for i, e := range evaluators {
		m[i] = autolearn.Metric{Name: e.Name(), Value: e.Score(c)}
	}
	return m
}

// EvaluateClustering scores a cluster assignment with each evaluator, in order.
func EvaluateClustering(evaluators []ClusteringEvaluator, x mat.Matrix, labels []int) autolearn.Metrics {
	m := make(autolearn.Metrics, len(evaluators))
	for i, e := range evaluators {
		m[i] = autolearn.Metric{Name: e.Name(), Value: e.Score(x, labels)}
	}
	return m
}
