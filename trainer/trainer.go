// Package trainer runs the experiment protocol of each task family: it searches candidates through a model search
// provider, selects a winner and persists it as an artifact.
package trainer

import (
	"io"

	"github.com/cheggaaa/pb/v3"
	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/provider"
	"github.com/hscells/autolearn/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// SortClassification is the metric classification candidates are ranked and tuned by.
	SortClassification = "AUC"
	// SelectClustering is the metric the clustering winner is selected by.
	SelectClustering = "Silhouette"
	// Sentinel is the score a clustering candidate must beat to be selected.
	Sentinel = -1.0
)

// DefaultClusteringModels is the allow-list of clustering kinds, in the order they are tried.
var DefaultClusteringModels = []string{"kmeans", "ap", "birch"}

// Report describes a successful training run.
type Report struct {
	RunID   string                     `json:"run_id" yaml:"run_id"`
	Task    autolearn.TaskFamily       `json:"task" yaml:"task"`
	Outcome autolearn.SelectionOutcome `json:"-" yaml:"-"`
	Config  autolearn.ExperimentConfig `json:"-" yaml:"-"`
}

// Trainer trains experiments and saves the selected model to an artifact store.
type Trainer struct {
	provider   provider.Provider
	store      *artifact.Store
	clustering []string
	progress   io.Writer
	runID      func() string
	log        *zap.Logger
}

// Option configures a trainer.
type Option func(*Trainer)

// ClusteringModels sets the clustering kinds that are tried, in order.
func ClusteringModels(kinds ...string) Option {
	return func(t *Trainer) {
		if len(kinds) > 0 {
			t.clustering = append([]string(nil), kinds...)
		}
	}
}

// Progress renders a progress bar over the clustering candidates to w.
func Progress(w io.Writer) Option {
	return func(t *Trainer) {
		t.progress = w
	}
}

// RunIDs sets the function that identifies training runs.
func RunIDs(fn func() string) Option {
	return func(t *Trainer) {
		t.runID = fn
	}
}

// Logger sets the logger of the trainer.
func Logger(l *zap.Logger) Option {
	return func(t *Trainer) {
		t.log = logger.OrNop(l)
	}
}

// New creates a trainer.
func New(p provider.Provider, store *artifact.Store, options ...Option) *Trainer {
	t := &Trainer{
		provider:   p,
		store:      store,
		clustering: DefaultClusteringModels,
		runID: func() string {
			return uuid.New().String()
		},
		log: zap.NewNop(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Scope returns a trainer saving to the artifact store of another scope.
func (t *Trainer) Scope(key string) (*Trainer, error) {
	s, err := t.store.Scope(key)
	if err != nil {
		return nil, err
	}
	c := *t
	c.store = s
	return &c, nil
}

// Train runs the protocol of the task family of a session.
func (t *Trainer) Train(s *session.Session) (Report, error) {
	if s == nil {
		return Report{}, autolearn.ErrNoActiveSession
	}
	switch s.Task {
	case autolearn.Regression:
		return t.TrainRegression(s)
	case autolearn.Classification:
		return t.TrainClassification(s)
	case autolearn.Clustering:
		return t.TrainClustering(s)
	}
	return Report{}, errors.Wrapf(autolearn.ErrInvalidSession, "unknown task family %d", s.Task)
}

// TrainRegression compares every regression candidate and selects the first in the provider's ranking.
func (t *Trainer) TrainRegression(s *session.Session) (Report, error) {
	return t.run(s, autolearn.Regression, func(exp provider.Experiment, log *zap.Logger) (autolearn.SelectionOutcome, error) {
		candidates, err := exp.Compare(provider.CompareOptions{})
		if err != nil {
			return autolearn.SelectionOutcome{}, errors.WithMessage(err, "compare")
		}
		if len(candidates) == 0 {
			return autolearn.SelectionOutcome{}, errors.New("provider returned no candidates")
		}
		return autolearn.SelectionOutcome{
			Winner:      candidates[0].Model,
			WinnerName:  candidates[0].Name,
			Leaderboard: autolearn.NewLeaderboard(candidates...),
		}, nil
	})
}

// TrainClassification compares every classification candidate by AUC and tunes the best one.
func (t *Trainer) TrainClassification(s *session.Session) (Report, error) {
	return t.run(s, autolearn.Classification, func(exp provider.Experiment, log *zap.Logger) (autolearn.SelectionOutcome, error) {
		candidates, err := exp.Compare(provider.CompareOptions{Sort: SortClassification})
		if err != nil {
			return autolearn.SelectionOutcome{}, errors.WithMessage(err, "compare")
		}
		if len(candidates) == 0 {
			return autolearn.SelectionOutcome{}, errors.New("provider returned no candidates")
		}
		log.Info("tuning candidate", zap.String("kind", candidates[0].Name))
		tuned, err := exp.Tune(candidates[0], SortClassification)
		if err != nil {
			return autolearn.SelectionOutcome{}, errors.WithMessagef(err, "tune %s", candidates[0].Name)
		}
		return autolearn.SelectionOutcome{
			Winner:      tuned.Model,
			WinnerName:  tuned.Name,
			Leaderboard: autolearn.NewLeaderboard(candidates...),
		}, nil
	})
}

// TrainClustering creates each allowed clustering kind in order, selects the first with the best silhouette and
// refits it. Every kind must be able to assign new data.
func (t *Trainer) TrainClustering(s *session.Session) (Report, error) {
	return t.run(s, autolearn.Clustering, func(exp provider.Experiment, log *zap.Logger) (autolearn.SelectionOutcome, error) {
		for _, kind := range t.clustering {
			if !exp.CanAssign(kind) {
				return autolearn.SelectionOutcome{}, errors.Errorf("clustering model %q cannot assign new data", kind)
			}
		}

		var bar *pb.ProgressBar
		if t.progress != nil {
			bar = pb.New(len(t.clustering)).SetWriter(t.progress).Start()
			defer bar.Finish()
		}

		var leaderboard autolearn.Leaderboard
		for _, kind := range t.clustering {
			c, err := exp.Create(kind)
			if err != nil {
				return autolearn.SelectionOutcome{}, errors.WithMessagef(err, "create %s", kind)
			}
			leaderboard.Append(kind, c.Metrics)
			log.Debug("evaluated candidate", zap.String("kind", kind))
			if bar != nil {
				bar.Increment()
			}
		}

		winner, err := SelectFirstBest(leaderboard.Rows, SelectClustering, Sentinel)
		if err != nil {
			return autolearn.SelectionOutcome{}, err
		}
		final, err := exp.Create(winner)
		if err != nil {
			return autolearn.SelectionOutcome{}, errors.WithMessagef(err, "refit %s", winner)
		}
		return autolearn.SelectionOutcome{
			Winner:      final.Model,
			WinnerName:  winner,
			Leaderboard: leaderboard,
		}, nil
	})
}

type search func(exp provider.Experiment, log *zap.Logger) (autolearn.SelectionOutcome, error)

// run sets up an experiment, searches it and saves the winner. Any error or panic is reported as a training failure
// and leaves the artifact store untouched.
func (t *Trainer) run(s *session.Session, task autolearn.TaskFamily, fn search) (report Report, err error) {
	if s == nil {
		return Report{}, autolearn.ErrNoActiveSession
	}
	if s.Task != task {
		return Report{}, errors.Wrapf(autolearn.ErrInvalidSession, "session is %s, not %s", s.Task, task)
	}

	id := t.runID()
	log := t.log.With(zap.String("run", id), zap.Stringer("task", task))
	log.Info("training", zap.Int("rows", s.Data.Len()), zap.String("target", s.Target))

	defer func() {
		if r := recover(); r != nil {
			e := goerrors.Wrap(r, 2)
			log.Error("training panicked", zap.String("panic", e.Error()), zap.String("stack", string(e.Stack())))
			report, err = Report{}, errors.Wrapf(autolearn.ErrTrainingFailure, "panic: %v", r)
		}
	}()

	fail := func(stage string, cause error) (Report, error) {
		log.Error("training failed", zap.String("stage", stage), zap.Error(cause))
		return Report{}, errors.Wrapf(autolearn.ErrTrainingFailure, "%s: %v", stage, cause)
	}

	exp, err := t.provider.Setup(s.Data, provider.Setup{Task: task, Target: s.Target, Session: id})
	if err != nil {
		return fail("setup", err)
	}
	config := exp.Config()

	outcome, err := fn(exp, log)
	if err != nil {
		return fail("search", err)
	}
	if outcome.Winner == nil {
		return fail("search", errors.New("no model selected"))
	}

	a := artifact.Artifact{
		Task:     task,
		Kind:     outcome.WinnerName,
		Features: s.Features(),
		Target:   s.Target,
		Model:    outcome.Winner,
	}
	if err := t.store.Save(a, id); err != nil {
		return fail("save", err)
	}

	log.Info("trained", zap.String("winner", outcome.WinnerName), zap.Int("candidates", outcome.Leaderboard.Len()))
	return Report{RunID: id, Task: task, Outcome: outcome, Config: config}, nil
}
