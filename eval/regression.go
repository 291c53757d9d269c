package eval

import (
	"math"

	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/mat"
)

type meanAbsoluteError struct{}
type meanSquaredError struct{}
type rootMeanSquaredError struct{}
type rSquared struct{}
type meanAbsolutePercentageError struct{}

var (
	// MAE is the mean absolute error.
	MAE = meanAbsoluteError{}
	// MSE is the mean squared error.
	MSE = meanSquaredError{}
	// RMSE is the root of the mean squared error.
	RMSE = rootMeanSquaredError{}
	// R2 is the coefficient of determination.
	R2 = rSquared{}
	// MAPE is the mean absolute percentage error, as a fraction.
	MAPE = meanAbsolutePercentageError{}
)

// epsilon keeps MAPE finite when an actual value is zero.
const epsilon = 2.220446049250313e-16

func (meanAbsoluteError) Name() string {
	return "MAE"
}

func (meanAbsoluteError) Score(actual, predicted []float64) float64 {
	return score(metrics.MAE, actual, predicted)
}

func (meanSquaredError) Name() string {
	return "MSE"
}

func (meanSquaredError) Score(actual, predicted []float64) float64 {
	return score(metrics.MSE, actual, predicted)
}

func (rootMeanSquaredError) Name() string {
	return "RMSE"
}

func (rootMeanSquaredError) Score(actual, predicted []float64) float64 {
	return score(metrics.RMSE, actual, predicted)
}

func (rSquared) Name() string {
	return "R2"
}

// Score follows the convention that a constant target scores 1 when predicted perfectly and 0 otherwise.
func (rSquared) Score(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	if constant(actual) {
		if MSE.Score(actual, predicted) == 0 {
			return 1
		}
		return 0
	}
	return score(metrics.R2Score, actual, predicted)
}

// score applies a scigo metric. Empty holdouts score 0 and mismatched lengths score NaN.
func score(metric func(yTrue, yPred *mat.VecDense) (float64, error), actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	if len(predicted) != len(actual) {
		return math.NaN()
	}
	v, err := metric(mat.NewVecDense(len(actual), actual), mat.NewVecDense(len(predicted), predicted))
	if err != nil {
		return math.NaN()
	}
	return v
}

func constant(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

func (meanAbsolutePercentageError) Name() string {
	return "MAPE"
}

func (meanAbsolutePercentageError) Score(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i, y := range actual {
		sum += math.Abs(y-predicted[i]) / math.Max(math.Abs(y), epsilon)
	}
	return sum / float64(len(actual))
}
