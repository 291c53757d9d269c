package predictor

import (
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/provider"
)

// ModelInvoker scores a dataset with a loaded model, whatever the calling convention of the provider.
type ModelInvoker interface {
	Invoke(model autolearn.Model, data *dataset.Dataset) (*dataset.Dataset, error)
}

// Positional invokes a scorer that takes the model and data as arguments.
type Positional struct {
	Scorer provider.Scorer
}

func (p Positional) Invoke(model autolearn.Model, data *dataset.Dataset) (*dataset.Dataset, error) {
	return p.Scorer.Predict(model, data)
}

// Named invokes an assigner that takes a request naming the model and data.
type Named struct {
	Assigner provider.Assigner
}

func (n Named) Invoke(model autolearn.Model, data *dataset.Dataset) (*dataset.Dataset, error) {
	return n.Assigner.Assign(provider.AssignRequest{Model: model, Data: data})
}

// Columns are the columns each task family appends to predictions.
var Columns = map[autolearn.TaskFamily][]string{
	autolearn.Regression:     {provider.PredictionLabel},
	autolearn.Classification: {provider.PredictionLabel, provider.PredictionScore},
	autolearn.Clustering:     {provider.ClusterLabel},
}
