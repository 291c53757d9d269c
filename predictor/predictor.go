// Package predictor scores new data with the model persisted by the last successful training run.
package predictor

import (
	goerrors "github.com/go-errors/errors"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/provider"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"go.uber.org/zap"
)

// Predictor loads artifacts and invokes them on new data.
type Predictor struct {
	store    *artifact.Store
	invokers map[autolearn.TaskFamily]ModelInvoker
	log      *zap.Logger
}

// Option configures a predictor.
type Option func(*Predictor)

// Invoker sets the invoker used for a task family.
func Invoker(task autolearn.TaskFamily, invoker ModelInvoker) Option {
	return func(p *Predictor) {
		p.invokers[task] = invoker
	}
}

// Logger sets the logger of the predictor.
func Logger(l *zap.Logger) Option {
	return func(p *Predictor) {
		p.log = logger.OrNop(l)
	}
}

// New creates a predictor. Regression and classification models are invoked through the scorer, clustering models
// through the assigner.
func New(store *artifact.Store, scorer provider.Scorer, assigner provider.Assigner, options ...Option) *Predictor {
	p := &Predictor{
		store: store,
		invokers: map[autolearn.TaskFamily]ModelInvoker{
			autolearn.Regression:     Positional{Scorer: scorer},
			autolearn.Classification: Positional{Scorer: scorer},
			autolearn.Clustering:     Named{Assigner: assigner},
		},
		log: zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Scope returns a predictor loading artifacts from the store of another scope.
func (p *Predictor) Scope(key string) (*Predictor, error) {
	s, err := p.store.Scope(key)
	if err != nil {
		return nil, err
	}
	c := *p
	c.store = s
	return &c, nil
}

// Missing returns the columns of want that are not in have, sorted.
func Missing(want, have []string) []string {
	w := set.Strings(append([]string(nil), want...))
	h := set.Strings(append([]string(nil), have...))
	return set.StringsDo(set.Diff, w, h...)
}

// Predict scores data with the artifact trained for a task family. The result has the columns of data followed by
// the prediction columns of the task family, with one row per input row. The input is never modified.
//
// Errors are autolearn.ErrArtifactNotFound, autolearn.ErrArtifactTaskMismatch or autolearn.ErrPrediction.
func (p *Predictor) Predict(task autolearn.TaskFamily, data *dataset.Dataset) (out *dataset.Dataset, err error) {
	invoker, ok := p.invokers[task]
	if !ok {
		return nil, errors.Wrapf(autolearn.ErrPrediction, "unknown task family %d", task)
	}
	if data.Empty() {
		return nil, errors.Wrap(autolearn.ErrPrediction, "no data to predict")
	}

	a, err := p.store.Load(task)
	if err != nil {
		if errors.Is(err, autolearn.ErrArtifactNotFound) || errors.Is(err, autolearn.ErrArtifactTaskMismatch) {
			return nil, err
		}
		return nil, errors.Wrap(autolearn.ErrPrediction, err.Error())
	}

	if missing := Missing(a.Features, data.Columns()); len(missing) > 0 {
		return nil, errors.Wrapf(autolearn.ErrPrediction, "data is missing columns %v", missing)
	}

	log := p.log.With(zap.Stringer("task", task), zap.String("kind", a.Kind), zap.String("scope", p.store.Name()))
	defer func() {
		if r := recover(); r != nil {
			e := goerrors.Wrap(r, 2)
			log.Error("prediction panicked", zap.String("panic", e.Error()), zap.String("stack", string(e.Stack())))
			out, err = nil, errors.Wrapf(autolearn.ErrPrediction, "panic: %v", r)
		}
	}()

	out, err = invoker.Invoke(a.Model, data.Clone())
	if err != nil {
		log.Error("prediction failed", zap.Error(err))
		return nil, errors.Wrap(autolearn.ErrPrediction, err.Error())
	}
	if out.Len() != data.Len() {
		return nil, errors.Wrapf(autolearn.ErrPrediction, "scored %d rows, expected %d", out.Len(), data.Len())
	}
	if missing := Missing(Columns[task], out.Columns()); len(missing) > 0 {
		return nil, errors.Wrapf(autolearn.ErrPrediction, "predictions are missing columns %v", missing)
	}

	log.Info("predicted", zap.Int("rows", out.Len()))
	return out, nil
}
