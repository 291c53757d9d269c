// Package pipeline provides a framework for running reproducible model selection experiments: it wires sessions,
// training, artifacts, inference and the data gateway together for each scope.
package pipeline

import (
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/output"
	"github.com/hscells/autolearn/predictor"
	"github.com/hscells/autolearn/session"
	"github.com/hscells/autolearn/trainer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Pipeline contains everything needed to train and use models for any number of scopes.
type Pipeline struct {
	Registry           *session.Registry
	Trainer            *trainer.Trainer
	Predictor          *predictor.Predictor
	Gateway            *dataset.Gateway
	LeaderboardFormats []output.LeaderboardFormatter
	ConfigFormats      []output.ConfigFormatter

	log *zap.Logger
}

// Output adds leaderboard outputs to the pipeline.
func Output(formatter ...output.LeaderboardFormatter) func() interface{} {
	return func() interface{} {
		return formatter
	}
}

// ConfigOutput adds experiment configuration outputs to the pipeline.
func ConfigOutput(formatter ...output.ConfigFormatter) func() interface{} {
	return func() interface{} {
		return formatter
	}
}

// Gateway configures where predictions are saved.
func Gateway(g dataset.Gateway) func() interface{} {
	return func() interface{} {
		return &g
	}
}

// Logger sets the logger of the pipeline.
func Logger(l *zap.Logger) func() interface{} {
	return func() interface{} {
		return logger.OrNop(l)
	}
}

// NewPipeline creates a new pipeline. The registry, trainer and predictor are required. Additional components are
// provided via the optional functional arguments.
func NewPipeline(registry *session.Registry, t *trainer.Trainer, p *predictor.Predictor, components ...func() interface{}) Pipeline {
	pl := Pipeline{
		Registry:  registry,
		Trainer:   t,
		Predictor: p,
		log:       zap.NewNop(),
	}

	for _, component := range components {
		val := component()
		switch v := val.(type) {
		case []output.LeaderboardFormatter:
			pl.LeaderboardFormats = v
		case []output.ConfigFormatter:
			pl.ConfigFormats = v
		case *dataset.Gateway:
			pl.Gateway = v
		case *zap.Logger:
			pl.log = v
		}
	}

	return pl
}

// Begin starts a new experiment for a scope, replacing the previous one.
func (pipeline Pipeline) Begin(scope string, data *dataset.Dataset, task autolearn.TaskFamily, target string) (*session.Session, error) {
	s, err := pipeline.Registry.Begin(scope, data, task, target)
	if err != nil {
		pipeline.log.Warn("could not begin experiment", zap.String("scope", scope), zap.Error(err))
		return nil, err
	}
	pipeline.log.Info("began experiment",
		zap.String("scope", scope),
		zap.Stringer("task", task),
		zap.String("target", s.Target),
		zap.Int("rows", data.Len()))
	return s, nil
}

// Train trains the active experiment of a scope and formats its leaderboard and configuration.
func (pipeline Pipeline) Train(scope string) (Result, error) {
	s, err := pipeline.Registry.Current(scope)
	if err != nil {
		return Result{}, err
	}
	t, err := pipeline.Trainer.Scope(scope)
	if err != nil {
		return Result{}, errors.Wrap(autolearn.ErrInvalidSession, err.Error())
	}
	if err := pipeline.Registry.Transition(scope, session.Training); err != nil {
		return Result{}, err
	}

	report, err := t.Train(s)
	if err != nil {
		pipeline.transition(scope, session.Failed)
		return Result{}, err
	}
	if pipeline.transition(scope, session.Trained) {
		pipeline.Registry.SetRunID(scope, report.RunID)
	}

	result := Result{Scope: scope, Report: report}
	for _, formatter := range pipeline.LeaderboardFormats {
		s, err := formatter(report.Outcome.Leaderboard, report.Outcome.WinnerName)
		if err != nil {
			return result, err
		}
		result.Leaderboards = append(result.Leaderboards, s)
	}
	for _, formatter := range pipeline.ConfigFormats {
		s, err := formatter(report.Config)
		if err != nil {
			return result, err
		}
		result.Configs = append(result.Configs, s)
	}
	return result, nil
}

// transition moves a session after training. The session may have been replaced while training, in which case the
// new session is left as it is.
func (pipeline Pipeline) transition(scope string, next session.State) bool {
	if err := pipeline.Registry.Transition(scope, next); err != nil {
		pipeline.log.Warn("session changed during training", zap.String("scope", scope), zap.Error(err))
		return false
	}
	return true
}

// Predict scores data with the artifact of a scope, using the task family of the active experiment.
func (pipeline Pipeline) Predict(scope string, data *dataset.Dataset) (*dataset.Dataset, error) {
	task, ok := pipeline.Registry.TaskFamily(scope)
	if !ok {
		return nil, errors.Wrapf(autolearn.ErrNoActiveSession, "scope %q", scope)
	}
	p, err := pipeline.Predictor.Scope(scope)
	if err != nil {
		return nil, errors.Wrap(autolearn.ErrPrediction, err.Error())
	}
	return p.Predict(task, data)
}

// SavePredictions saves predictions through the gateway of the pipeline.
func (pipeline Pipeline) SavePredictions(predictions *dataset.Dataset) error {
	if pipeline.Gateway == nil {
		return errors.New("pipeline has no gateway")
	}
	return pipeline.Gateway.SavePredictions(predictions)
}
