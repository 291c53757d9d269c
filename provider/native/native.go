// Package native is a model search provider built on the learners of the learning package. It supports regression,
// classification and clustering experiments over the numeric and categorical columns of a dataset.
package native

import (
	"encoding/gob"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/learning"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/preprocess"
	"github.com/hscells/autolearn/provider"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultHoldout is the fraction of rows supervised candidates are evaluated on.
	DefaultHoldout = 0.3
	// Multicollinearity is the absolute correlation above which clustering features are removed.
	Multicollinearity = 0.9
)

// RegressionModel is a fitted regression candidate together with the encoder of its features.
type RegressionModel struct {
	Kind      string
	Encoder   *preprocess.Encoder
	Regressor learning.Regressor
}

// ClassificationModel is a fitted classification candidate together with the encoders of its features and target.
type ClassificationModel struct {
	Kind       string
	Encoder    *preprocess.Encoder
	Labels     preprocess.Labels
	Classifier learning.Classifier
}

// ClusteringModel is a fitted clustering candidate together with the encoder of its features.
type ClusteringModel struct {
	Kind      string
	Encoder   *preprocess.Encoder
	Clusterer learning.Clusterer
}

var register sync.Once

func constructor() {
	register.Do(func() {
		learning.Register()
		gob.Register(&RegressionModel{})
		gob.Register(&ClassificationModel{})
		gob.Register(&ClusteringModel{})
	})
}

// Provider is the native model search provider. It implements provider.Provider, provider.Scorer and
// provider.Assigner.
type Provider struct {
	seed     int64
	holdout  float64
	clusters int
	log      *zap.Logger
}

// Option configures a provider.
type Option func(*Provider)

// Seed sets the seed of the holdout split and of clusterer initialisation.
func Seed(seed int64) Option {
	return func(p *Provider) {
		p.seed = seed
	}
}

// Holdout sets the fraction of rows supervised candidates are evaluated on.
func Holdout(fraction float64) Option {
	return func(p *Provider) {
		if fraction > 0 && fraction < 1 {
			p.holdout = fraction
		}
	}
}

// Clusters sets the number of clusters of clusterers with a fixed number of clusters.
func Clusters(k int) Option {
	return func(p *Provider) {
		if k > 0 {
			p.clusters = k
		}
	}
}

// Logger sets the logger of the provider.
func Logger(l *zap.Logger) Option {
	return func(p *Provider) {
		p.log = logger.OrNop(l)
	}
}

// New creates a native provider.
func New(options ...Option) *Provider {
	p := &Provider{
		seed:     learning.DefaultSeed,
		holdout:  DefaultHoldout,
		clusters: learning.DefaultClusters,
		log:      zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	constructor()
	return p
}

// round formats a prediction to four decimal places.
func round(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

// Predict scores a dataset with a regression or classification model. Regression appends prediction_label;
// classification appends prediction_label and prediction_score, the probability of the predicted class.
func (p *Provider) Predict(model autolearn.Model, data *dataset.Dataset) (*dataset.Dataset, error) {
	switch m := model.(type) {
	case *RegressionModel:
		x, err := m.Encoder.Transform(data)
		if err != nil {
			return nil, err
		}
		y := m.Regressor.Predict(x)
		labels := make([]string, len(y))
		for i, v := range y {
			labels[i] = round(v)
		}
		return data.WithColumn(provider.PredictionLabel, labels)
	case *ClassificationModel:
		x, err := m.Encoder.Transform(data)
		if err != nil {
			return nil, err
		}
		prob := m.Classifier.Probabilities(x)
		labels := make([]string, len(prob))
		scores := make([]string, len(prob))
		for i, row := range prob {
			best := 0
			for k, v := range row {
				if v > row[best] {
					best = k
				}
			}
			labels[i] = m.Labels.Classes[best]
			scores[i] = round(row[best])
		}
		out, err := data.WithColumn(provider.PredictionLabel, labels)
		if err != nil {
			return nil, err
		}
		return out.WithColumn(provider.PredictionScore, scores)
	}
	return nil, errors.Errorf("cannot predict with %T", model)
}

// Assign assigns each row of a dataset to a cluster of a clustering model, appending a Cluster column with values
// of the form "Cluster 0".
func (p *Provider) Assign(request provider.AssignRequest) (*dataset.Dataset, error) {
	m, ok := request.Model.(*ClusteringModel)
	if !ok {
		return nil, errors.Errorf("cannot assign clusters with %T", request.Model)
	}
	x, err := m.Encoder.Transform(request.Data)
	if err != nil {
		return nil, err
	}
	labels := m.Clusterer.Assign(x)
	clusters := make([]string, len(labels))
	for i, l := range labels {
		clusters[i] = fmt.Sprintf("Cluster %d", l)
	}
	return request.Data.WithColumn(provider.ClusterLabel, clusters)
}
