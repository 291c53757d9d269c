package preprocess_test

import (
	"testing"

	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cars = dataset.MustNew(
	[]string{"mpg", "weight", "origin"},
	[][]string{
		{"18", "3504", "usa"},
		{"NA", "3693", "europe"},
		{"36", "2130", "japan"},
		{"27", "", "usa"},
	},
)

func TestFitEncodes(t *testing.T) {
	e, err := preprocess.Fit(cars, []string{"mpg", "origin"})
	require.NoError(t, err)

	assert.Equal(t, []string{"mpg", "origin_europe", "origin_japan", "origin_usa"}, e.Names())

	x, err := e.Transform(cars)
	require.NoError(t, err)
	r, c := x.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)

	// Missing numeric values are replaced by the mean.
	assert.Equal(t, 27.0, x.At(1, 0))
	assert.Equal(t, []float64{18, 0, 0, 1}, []float64{x.At(0, 0), x.At(0, 1), x.At(0, 2), x.At(0, 3)})
	assert.Equal(t, 1.0, x.At(2, 2))
}

func TestTransformUnseenCategory(t *testing.T) {
	e, err := preprocess.Fit(cars, []string{"origin"})
	require.NoError(t, err)

	d := dataset.MustNew([]string{"origin"}, [][]string{{"mars"}})
	x, err := e.Transform(d)
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		assert.Equal(t, 0.0, x.At(0, j))
	}

	_, err = e.Transform(dataset.MustNew([]string{"colour"}, [][]string{{"red"}}))
	assert.Error(t, err)
}

func TestNormalise(t *testing.T) {
	d := dataset.MustNew([]string{"a"}, [][]string{{"1"}, {"3"}})
	e, err := preprocess.Fit(d, []string{"a"}, preprocess.Normalise())
	require.NoError(t, err)

	x, err := e.Transform(d)
	require.NoError(t, err)
	assert.InDelta(t, -1, x.At(0, 0), 1e-12)
	assert.InDelta(t, 1, x.At(1, 0), 1e-12)
}

func TestNormaliseConstantColumn(t *testing.T) {
	d := dataset.MustNew([]string{"a", "b"}, [][]string{{"2", "1"}, {"2", "5"}, {"2", "9"}})
	e, err := preprocess.Fit(d, []string{"a", "b"}, preprocess.Normalise())
	require.NoError(t, err)

	x, err := e.Transform(d)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, x.At(i, 0))
	}
	assert.InDelta(t, 0, x.At(1, 1), 1e-12)
	assert.InDelta(t, -x.At(0, 1), x.At(2, 1), 1e-12)
}

func TestRemoveMulticollinearity(t *testing.T) {
	d := dataset.MustNew(
		[]string{"a", "b", "c"},
		[][]string{{"1", "2", "5"}, {"2", "4", "1"}, {"3", "6", "4"}, {"4", "8", "2"}},
	)
	e, err := preprocess.Fit(d, []string{"a", "b", "c"}, preprocess.RemoveMulticollinearity(0.9))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, e.Names())

	x, err := e.Transform(d)
	require.NoError(t, err)
	_, c := x.Dims()
	assert.Equal(t, 2, c)

	v, ok := e.Config().Get("Remove Multicollinearity")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestFitWithoutFeatures(t *testing.T) {
	d := dataset.MustNew([]string{"a"}, [][]string{{""}, {"NA"}})
	_, err := preprocess.Fit(d, []string{"a"})
	assert.ErrorIs(t, err, preprocess.ErrNoFeatures)
}

func TestLabels(t *testing.T) {
	l, err := preprocess.FitLabels([]string{"yes", "no", "yes", "", "maybe"})
	require.NoError(t, err)
	assert.Equal(t, []string{"maybe", "no", "yes"}, l.Classes)
	assert.Equal(t, 2, l.Index("yes"))
	assert.Equal(t, -1, l.Index("perhaps"))

	y, err := l.Encode([]string{"no", "maybe"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, y)

	_, err = l.Encode([]string{"perhaps"})
	assert.Error(t, err)

	_, err = preprocess.FitLabels([]string{"yes", "yes"})
	assert.Error(t, err)
}
