package eval_test

import (
	"math"
	"testing"

	"github.com/hscells/autolearn/eval"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestRegressionMeasures(t *testing.T) {
	actual := []float64{3, -0.5, 2, 7}
	predicted := []float64{2.5, 0, 2, 8}

	assert.InDelta(t, 0.5, eval.MAE.Score(actual, predicted), 1e-12)
	assert.InDelta(t, 0.375, eval.MSE.Score(actual, predicted), 1e-12)
	assert.InDelta(t, math.Sqrt(0.375), eval.RMSE.Score(actual, predicted), 1e-12)
	assert.InDelta(t, 0.9486081370449679, eval.R2.Score(actual, predicted), 1e-12)
	assert.InDelta(t, (0.5/3+0.5/0.5+0+1.0/7)/4, eval.MAPE.Score(actual, predicted), 1e-12)

	assert.Equal(t, 1.0, eval.R2.Score([]float64{2, 2}, []float64{2, 2}))
	assert.Equal(t, 0.0, eval.R2.Score([]float64{2, 2}, []float64{1, 2}))

	assert.Equal(t, 0.0, eval.MAE.Score(nil, nil))
	assert.True(t, math.IsNaN(eval.RMSE.Score([]float64{1, 2}, []float64{1})))
}

func TestEvaluateRegressionOrder(t *testing.T) {
	m := eval.EvaluateRegression(eval.RegressionMeasures, []float64{1, 2}, []float64{1, 2})
	assert.Equal(t, []string{"MAE", "MSE", "RMSE", "R2", "MAPE"}, m.Names())
}

func TestBinaryClassification(t *testing.T) {
	c := eval.Classification{
		Classes:   2,
		Actual:    []int{0, 0, 1, 1},
		Predicted: []int{0, 0, 0, 1},
		Probabilities: [][]float64{
			{0.9, 0.1},
			{0.6, 0.4},
			{0.65, 0.35},
			{0.2, 0.8},
		},
	}
	assert.InDelta(t, 0.75, eval.Accuracy.Score(c), 1e-12)
	assert.InDelta(t, 0.75, eval.AUC.Score(c), 1e-12)
	assert.InDelta(t, 0.5, eval.Recall.Score(c), 1e-12)
	assert.InDelta(t, 1.0, eval.Precision.Score(c), 1e-12)
	assert.InDelta(t, 2.0/3.0, eval.F1.Score(c), 1e-12)

	m := eval.EvaluateClassification(eval.ClassificationMeasures, c)
	assert.Equal(t, []string{"Accuracy", "AUC", "Recall", "Prec.", "F1"}, m.Names())
}

func TestMulticlassClassification(t *testing.T) {
	c := eval.Classification{
		Classes:   3,
		Actual:    []int{0, 1, 2, 2},
		Predicted: []int{0, 1, 2, 2},
		Probabilities: [][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
			{0, 0.2, 0.8},
		},
	}
	assert.Equal(t, 1.0, eval.Accuracy.Score(c))
	assert.InDelta(t, 1.0, eval.AUC.Score(c), 1e-12)
	assert.InDelta(t, 1.0, eval.Recall.Score(c), 1e-12)
	assert.InDelta(t, 1.0, eval.F1.Score(c), 1e-12)
}

func TestClusteringMeasures(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		10, 0,
		10, 1,
	})
	good := []int{0, 0, 1, 1}
	bad := []int{0, 1, 0, 1}

	s := eval.Silhouette.Score(x, good)
	assert.InDelta(t, (10+math.Sqrt(101))/2-1, s*(10+math.Sqrt(101))/2, 1e-9)
	assert.Greater(t, s, eval.Silhouette.Score(x, bad))

	assert.Greater(t, eval.CalinskiHarabasz.Score(x, good), eval.CalinskiHarabasz.Score(x, bad))
	assert.Less(t, eval.DaviesBouldin.Score(x, good), eval.DaviesBouldin.Score(x, bad))

	// Degenerate assignments.
	assert.Equal(t, -1.0, eval.Silhouette.Score(x, []int{0, 0, 0, 0}))
	assert.Equal(t, -1.0, eval.Silhouette.Score(x, []int{0, 1, 2, 3}))
	assert.Equal(t, 0.0, eval.CalinskiHarabasz.Score(x, []int{0, 0, 0, 0}))
}

func TestBetter(t *testing.T) {
	assert.True(t, eval.Better("RMSE", 1, 2))
	assert.True(t, eval.Better("AUC", 0.9, 0.8))
	assert.True(t, eval.Better("Davies-Bouldin", 0.1, 0.2))
	assert.True(t, eval.LowerIsBetter("MAE"))
	assert.False(t, eval.LowerIsBetter("Silhouette"))
}
