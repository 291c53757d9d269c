package eval

import (
	"math"

	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Classification holds the predictions of a classifier over a holdout. Classes are identified by their index.
type Classification struct {
	// Classes is the number of classes.
	Classes   int
	Actual    []int
	Predicted []int
	// Probabilities holds, for each row, the probability assigned to each class.
	Probabilities [][]float64
}

type accuracy struct{}
type areaUnderCurve struct{}
type recall struct{}
type precision struct{}
type f1 struct{}

var (
	// Accuracy is the fraction of rows predicted correctly.
	Accuracy = accuracy{}
	// AUC is the area under the ROC curve. Multiclass problems average the one-vs-rest curves of each class.
	AUC = areaUnderCurve{}
	// Recall is the recall of the positive class for binary problems, and the support weighted recall otherwise.
	Recall = recall{}
	// Precision is the precision of the positive class for binary problems, and the support weighted precision
	// otherwise.
	Precision = precision{}
	// F1 is the harmonic mean of precision and recall, averaged the same way.
	F1 = f1{}
)

func (accuracy) Name() string {
	return "Accuracy"
}

func (accuracy) Score(c Classification) float64 {
	if len(c.Actual) == 0 {
		return 0
	}
	if len(c.Predicted) != len(c.Actual) {
		return math.NaN()
	}
	v, err := metrics.Accuracy(classVector(c.Actual), classVector(c.Predicted))
	if err != nil {
		return math.NaN()
	}
	return v
}

func classVector(y []int) *mat.VecDense {
	v := mat.NewVecDense(len(y), nil)
	for i, l := range y {
		v.SetVec(i, float64(l))
	}
	return v
}

func (areaUnderCurve) Name() string {
	return "AUC"
}

func (areaUnderCurve) Score(c Classification) float64 {
	if c.Classes == 2 {
		return oneVsRest(c, 1)
	}
	var sum float64
	n := 0
	for k := 0; k < c.Classes; k++ {
		auc := oneVsRest(c, k)
		if auc < 0 {
			continue
		}
		sum += auc
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// oneVsRest computes the area under the ROC curve of class k against all others. It returns -1 when the holdout
// does not contain both positive and negative rows.
func oneVsRest(c Classification, k int) float64 {
	if len(c.Actual) == 0 || len(c.Probabilities) != len(c.Actual) {
		return -1
	}
	y := make([]float64, len(c.Actual))
	classes := make([]bool, len(c.Actual))
	pos := 0
	for i, a := range c.Actual {
		if k < len(c.Probabilities[i]) {
			y[i] = c.Probabilities[i][k]
		}
		classes[i] = a == k
		if classes[i] {
			pos++
		}
	}
	if pos == 0 || pos == len(classes) {
		if c.Classes == 2 {
			return 0
		}
		return -1
	}
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// confusion counts the true positives, false positives and false negatives of class k.
func confusion(c Classification, k int) (tp, fp, fn float64) {
	for i, a := range c.Actual {
		p := c.Predicted[i]
		switch {
		case a == k && p == k:
			tp++
		case a != k && p == k:
			fp++
		case a == k && p != k:
			fn++
		}
	}
	return
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// average computes a per-class measure for the positive class of binary problems, and weights it by the support of
// each class otherwise.
func average(c Classification, measure func(tp, fp, fn float64) float64) float64 {
	if c.Classes == 2 {
		return measure(confusion(c, 1))
	}
	if len(c.Actual) == 0 {
		return 0
	}
	var sum float64
	for k := 0; k < c.Classes; k++ {
		tp, fp, fn := confusion(c, k)
		sum += (tp + fn) * measure(tp, fp, fn)
	}
	return sum / float64(len(c.Actual))
}

func (recall) Name() string {
	return "Recall"
}

func (recall) Score(c Classification) float64 {
	return average(c, func(tp, fp, fn float64) float64 {
		return ratio(tp, tp+fn)
	})
}

func (precision) Name() string {
	return "Prec."
}

func (precision) Score(c Classification) float64 {
	return average(c, func(tp, fp, fn float64) float64 {
		return ratio(tp, tp+fp)
	})
}

func (f1) Name() string {
	return "F1"
}

func (f1) Score(c Classification) float64 {
	return average(c, func(tp, fp, fn float64) float64 {
		p, r := ratio(tp, tp+fp), ratio(tp, tp+fn)
		return ratio(2*p*r, p+r)
	})
}
