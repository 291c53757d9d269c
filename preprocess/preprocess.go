// Package preprocess turns datasets into the numeric feature matrices models are fitted on.
package preprocess

import (
	"math"
	"strconv"

	"github.com/YuminosukeSato/scigo/preprocessing"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoFeatures is returned when no usable feature remains after preprocessing.
var ErrNoFeatures = errors.New("no usable features")

// Column describes how one input column is encoded. Numeric columns produce a single feature with missing values
// replaced by the column mean; other columns are one-hot encoded over the levels seen while fitting.
type Column struct {
	Name    string
	Numeric bool
	Mean    float64
	Levels  []string
}

// Feature is one column of the encoded matrix.
type Feature struct {
	Name string
	// Mean and Std are used to standardise the feature when normalisation is enabled.
	Mean float64
	Std  float64
	// Keep is false for features removed for being collinear with an earlier feature.
	Keep bool
}

// Encoder encodes datasets into feature matrices. An encoder is fitted once on training data and then applied to
// any dataset with the same columns. Encoders are persisted with the models that use them.
type Encoder struct {
	Columns   []Column
	Features  []Feature
	Normalise bool
	// Threshold is the absolute correlation above which a feature is removed. Zero disables the removal.
	Threshold float64
}

// Option configures how an encoder is fitted.
type Option func(*Encoder)

// Normalise standardises every feature to zero mean and unit variance.
func Normalise() Option {
	return func(e *Encoder) {
		e.Normalise = true
	}
}

// RemoveMulticollinearity removes features whose absolute correlation with an earlier feature exceeds threshold.
func RemoveMulticollinearity(threshold float64) Option {
	return func(e *Encoder) {
		e.Threshold = threshold
	}
}

// Fit fits an encoder for the named columns of a dataset.
func Fit(d *dataset.Dataset, columns []string, options ...Option) (*Encoder, error) {
	if d.Len() == 0 {
		return nil, dataset.ErrEmpty
	}
	e := &Encoder{}
	for _, option := range options {
		option(e)
	}

	for _, name := range columns {
		values, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		c := Column{Name: name, Numeric: d.Numeric(name)}
		if c.Numeric {
			var sum float64
			n := 0
			for _, v := range values {
				if f, ok := parse(v); ok {
					sum += f
					n++
				}
			}
			c.Mean = sum / float64(n)
			e.Features = append(e.Features, Feature{Name: name, Std: 1, Keep: true})
		} else {
			var levels []string
			for _, v := range values {
				if !dataset.IsMissing(v) {
					levels = append(levels, v)
				}
			}
			c.Levels = set.Strings(levels)
			for _, l := range c.Levels {
				e.Features = append(e.Features, Feature{Name: name + "_" + l, Std: 1, Keep: true})
			}
		}
		e.Columns = append(e.Columns, c)
	}
	if len(e.Features) == 0 {
		return nil, ErrNoFeatures
	}

	x, err := e.encode(d)
	if err != nil {
		return nil, err
	}
	r, _ := x.Dims()
	col := make([]float64, r)

	if e.Normalise {
		scaler := preprocessing.NewStandardScaler(true, true)
		if err := scaler.Fit(x); err != nil {
			return nil, errors.Wrap(err, "could not fit scaler")
		}
		for j := range e.Features {
			std := scaler.Scale[j]
			if math.IsNaN(std) {
				std = 1
			}
			e.Features[j].Mean, e.Features[j].Std = scaler.Mean[j], std
		}
	}

	if e.Threshold > 0 {
		other := make([]float64, r)
		for i := range e.Features {
			if !e.Features[i].Keep {
				continue
			}
			mat.Col(col, i, x)
			for j := i + 1; j < len(e.Features); j++ {
				if !e.Features[j].Keep {
					continue
				}
				mat.Col(other, j, x)
				if c := stat.Correlation(col, other, nil); math.Abs(c) > e.Threshold {
					e.Features[j].Keep = false
				}
			}
		}
	}
	return e, nil
}

func parse(v string) (float64, bool) {
	if dataset.IsMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// encode builds the unscaled matrix of every feature.
func (e *Encoder) encode(d *dataset.Dataset) (*mat.Dense, error) {
	if d.Len() == 0 {
		return nil, dataset.ErrEmpty
	}
	index := make([]int, len(e.Columns))
	for k, c := range e.Columns {
		index[k] = d.ColumnIndex(c.Name)
		if index[k] < 0 {
			return nil, errors.Errorf("missing column %q", c.Name)
		}
	}

	x := mat.NewDense(d.Len(), len(e.Features), nil)
	for i := 0; i < d.Len(); i++ {
		j := 0
		for k, c := range e.Columns {
			cell := d.Cell(i, index[k])
			if c.Numeric {
				v, ok := d.Float(i, index[k])
				if !ok {
					v = c.Mean
				}
				x.Set(i, j, v)
				j++
				continue
			}
			for _, l := range c.Levels {
				if cell == l {
					x.Set(i, j, 1)
				}
				j++
			}
		}
	}
	return x, nil
}

// Transform encodes a dataset into a matrix with one row per dataset row and one column per kept feature. Categories
// not seen while fitting are encoded as all zeros.
func (e *Encoder) Transform(d *dataset.Dataset) (*mat.Dense, error) {
	x, err := e.encode(d)
	if err != nil {
		return nil, err
	}
	r, _ := x.Dims()
	out := mat.NewDense(r, len(e.Names()), nil)
	for i := 0; i < r; i++ {
		k := 0
		for j, f := range e.Features {
			if !f.Keep {
				continue
			}
			v := x.At(i, j)
			if e.Normalise {
				v = (v - f.Mean) / f.Std
			}
			out.Set(i, k, v)
			k++
		}
	}
	return out, nil
}

// Names returns the names of the kept features, in matrix column order.
func (e *Encoder) Names() []string {
	var names []string
	for _, f := range e.Features {
		if f.Keep {
			names = append(names, f.Name)
		}
	}
	return names
}

// Config describes the encoder.
func (e *Encoder) Config() autolearn.ExperimentConfig {
	categorical := 0
	for _, c := range e.Columns {
		if !c.Numeric {
			categorical++
		}
	}
	return autolearn.ExperimentConfig{
		{Name: "Numeric Features", Value: strconv.Itoa(len(e.Columns) - categorical)},
		{Name: "Categorical Features", Value: strconv.Itoa(categorical)},
		{Name: "Transformed Features", Value: strconv.Itoa(len(e.Names()))},
		{Name: "Normalize", Value: strconv.FormatBool(e.Normalise)},
		{Name: "Remove Multicollinearity", Value: strconv.FormatBool(e.Threshold > 0)},
		{Name: "Multicollinearity Threshold", Value: strconv.FormatFloat(e.Threshold, 'g', -1, 64)},
	}
}
