package learning

import (
	"math"

	"github.com/YuminosukeSato/scigo/linear"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearRegression is a least squares linear model with an L2 penalty of Alpha on the coefficients. An Alpha of
// zero is ordinary least squares.
type LinearRegression struct {
	Alpha     float64
	Coef      []float64
	Intercept float64
}

// jitter keeps the normal equations solvable when features are collinear.
const jitter = 1e-9

// Fit solves ordinary least squares with scigo when Alpha is zero. Ridge penalties, and designs whose normal
// equations scigo finds singular such as one-hot levels alongside the intercept, are solved by penalisedFit.
func (m *LinearRegression) Fit(x mat.Matrix, y []float64) error {
	r, _ := x.Dims()
	if r == 0 || len(y) != r {
		return errors.Errorf("cannot fit %d targets to %d rows", len(y), r)
	}
	if m.Alpha == 0 {
		ols := linear.NewLinearRegression()
		if err := ols.Fit(x, mat.NewDense(r, 1, y)); err == nil && finite(ols.GetWeights()) {
			m.Coef = ols.GetWeights()
			m.Intercept = ols.GetIntercept()
			return nil
		}
	}
	return m.penalisedFit(x, y)
}

func finite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (m *LinearRegression) penalisedFit(x mat.Matrix, y []float64) error {
	r, c := x.Dims()

	col := make([]float64, r)
	centre := make([]float64, c)
	for j := range centre {
		centre[j] = stat.Mean(mat.Col(col, j, x), nil)
	}
	ymean := stat.Mean(y, nil)

	xc := mat.NewDense(r, c, nil)
	xc.Apply(func(i, j int, v float64) float64 {
		return v - centre[j]
	}, x)
	yc := make([]float64, r)
	for i, v := range y {
		yc[i] = v - ymean
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, xc.T())
	for j := 0; j < c; j++ {
		xtx.SetSym(j, j, xtx.At(j, j)+m.Alpha+jitter)
	}
	var xty mat.VecDense
	xty.MulVec(xc.T(), mat.NewVecDense(r, yc))

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return errors.New("normal equations are not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return errors.Wrap(err, "could not solve normal equations")
		}
	}

	m.Coef = make([]float64, c)
	for j := range m.Coef {
		m.Coef[j] = beta.AtVec(j)
	}
	m.Intercept = ymean - floats.Dot(m.Coef, centre)
	return nil
}

func (m *LinearRegression) Predict(x mat.Matrix) []float64 {
	p := points(x)
	y := make([]float64, len(p))
	for i, row := range p {
		y[i] = m.Intercept + floats.Dot(m.Coef, row)
	}
	return y
}

// DummyRegressor predicts the mean of the training target.
type DummyRegressor struct {
	Mean float64
}

func (m *DummyRegressor) Fit(x mat.Matrix, y []float64) error {
	if len(y) == 0 {
		return errors.New("cannot fit an empty target")
	}
	m.Mean = stat.Mean(y, nil)
	return nil
}

func (m *DummyRegressor) Predict(x mat.Matrix) []float64 {
	r, _ := x.Dims()
	y := make([]float64, r)
	for i := range y {
		y[i] = m.Mean
	}
	return y
}
