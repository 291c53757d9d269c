// Package provider defines the capabilities a model search provider must offer. A provider configures experiments
// over a dataset, fits and evaluates candidate models, and scores new data with the models it produced.
package provider

import (
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
)

// Setup configures an experiment.
type Setup struct {
	Task autolearn.TaskFamily
	// Target is the column to predict. It is empty for clustering.
	Target string
	// Session identifies the experiment in the configuration record.
	Session string
}

// CompareOptions configures a comparison of candidates.
type CompareOptions struct {
	// Sort is the metric candidates are ranked by. An empty Sort uses the provider's default ranking.
	Sort string
}

// Provider configures experiments.
type Provider interface {
	Setup(data *dataset.Dataset, setup Setup) (Experiment, error)
}

// Experiment is a configured experiment.
type Experiment interface {
	// Config describes how the experiment was configured.
	Config() autolearn.ExperimentConfig
	// Compare fits and evaluates every candidate of a supervised experiment, best first.
	Compare(options CompareOptions) ([]autolearn.CandidateResult, error)
	// Create fits and evaluates a single candidate of the named kind.
	Create(kind string) (autolearn.CandidateResult, error)
	// Tune searches the hyperparameters of a candidate, optimising the named metric.
	Tune(candidate autolearn.CandidateResult, optimize string) (autolearn.CandidateResult, error)
	// CanAssign reports whether models of the named kind can assign new data to clusters.
	CanAssign(kind string) bool
}

// Scorer scores data with regression and classification models.
type Scorer interface {
	// Predict returns the data with prediction columns appended.
	Predict(model autolearn.Model, data *dataset.Dataset) (*dataset.Dataset, error)
}

// AssignRequest is a request to assign data to clusters.
type AssignRequest struct {
	Model autolearn.Model
	Data  *dataset.Dataset
}

// Assigner assigns data to the clusters of clustering models.
type Assigner interface {
	// Assign returns the data with a cluster column appended.
	Assign(request AssignRequest) (*dataset.Dataset, error)
}

// Prediction column names.
const (
	PredictionLabel = "prediction_label"
	PredictionScore = "prediction_score"
	ClusterLabel    = "Cluster"
)
