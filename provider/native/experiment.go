package native

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/eval"
	"github.com/hscells/autolearn/learning"
	"github.com/hscells/autolearn/preprocess"
	"github.com/hscells/autolearn/provider"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type experiment struct {
	p       *Provider
	setup   provider.Setup
	encoder *preprocess.Encoder
	x       *mat.Dense
	config  autolearn.ExperimentConfig

	// Supervised experiments only.
	train, test []int
	y           []float64
	labels      preprocess.Labels
	classes     []int
}

// Setup encodes the features of a dataset and, for supervised tasks, splits it into training and holdout rows.
// Clustering features are normalised and stripped of multicollinear columns.
func (p *Provider) Setup(data *dataset.Dataset, setup provider.Setup) (provider.Experiment, error) {
	if err := dataset.Validate(data); err != nil {
		return nil, err
	}
	e := &experiment{p: p, setup: setup}

	var features []string
	for _, c := range data.Columns() {
		if c != setup.Target || !setup.Task.Supervised() {
			features = append(features, c)
		}
	}

	var options []preprocess.Option
	if setup.Task == autolearn.Clustering {
		options = append(options, preprocess.Normalise(), preprocess.RemoveMulticollinearity(Multicollinearity))
	}
	var err error
	e.encoder, err = preprocess.Fit(data, features, options...)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode features")
	}
	e.x, err = e.encoder.Transform(data)
	if err != nil {
		return nil, err
	}

	targetType := ""
	switch setup.Task {
	case autolearn.Regression:
		target, err := data.Column(setup.Target)
		if err != nil {
			return nil, err
		}
		e.y = make([]float64, len(target))
		for i, v := range target {
			f, ok := data.Float(i, data.ColumnIndex(setup.Target))
			if !ok {
				return nil, errors.Errorf("target %q has non-numeric value %q in row %d", setup.Target, v, i)
			}
			e.y[i] = f
		}
		e.train, e.test = split(len(e.y), nil, p.holdout, p.seed)
		targetType = "Regression"
	case autolearn.Classification:
		target, err := data.Column(setup.Target)
		if err != nil {
			return nil, err
		}
		if e.labels, err = preprocess.FitLabels(target); err != nil {
			return nil, err
		}
		if e.classes, err = e.labels.Encode(target); err != nil {
			return nil, err
		}
		e.train, e.test = split(len(e.classes), e.classes, p.holdout, p.seed)
		targetType = "Binary"
		if e.labels.Len() > 2 {
			targetType = "Multiclass"
		}
	case autolearn.Clustering:
	default:
		return nil, errors.Errorf("unsupported task family %s", setup.Task)
	}

	r, c := e.x.Dims()
	e.config = autolearn.ExperimentConfig{
		{Name: "Session id", Value: setup.Session},
		{Name: "Seed", Value: strconv.FormatInt(p.seed, 10)},
		{Name: "Task", Value: setup.Task.String()},
	}
	if setup.Task.Supervised() {
		e.config = append(e.config,
			autolearn.Param{Name: "Target", Value: setup.Target},
			autolearn.Param{Name: "Target type", Value: targetType})
	}
	e.config = append(e.config,
		autolearn.Param{Name: "Original data shape", Value: fmt.Sprintf("(%d, %d)", data.Len(), data.Width())},
		autolearn.Param{Name: "Transformed data shape", Value: fmt.Sprintf("(%d, %d)", r, c)})
	if setup.Task.Supervised() {
		e.config = append(e.config,
			autolearn.Param{Name: "Transformed train set shape", Value: fmt.Sprintf("(%d, %d)", len(e.train), c)},
			autolearn.Param{Name: "Transformed test set shape", Value: fmt.Sprintf("(%d, %d)", len(e.test), c)})
	}
	e.config = append(e.config, e.encoder.Config()...)

	p.log.Info("configured experiment",
		zap.String("session", setup.Session),
		zap.Stringer("task", setup.Task),
		zap.Int("rows", r),
		zap.Int("features", c))
	return e, nil
}

// split divides n rows into training and holdout rows. When strata are given, each stratum is split separately so
// that both sides keep the class balance. Both sides always have at least one row.
func split(n int, strata []int, holdout float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	groups := map[int][]int{}
	var keys []int
	for i := 0; i < n; i++ {
		s := 0
		if strata != nil {
			s = strata[i]
		}
		if _, ok := groups[s]; !ok {
			keys = append(keys, s)
		}
		groups[s] = append(groups[s], i)
	}
	sort.Ints(keys)
	for _, k := range keys {
		rows := groups[k]
		rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
		h := int(math.Round(float64(len(rows)) * holdout))
		test = append(test, rows[:h]...)
		train = append(train, rows[h:]...)
	}
	if len(test) == 0 {
		test, train = train[len(train)-1:], train[:len(train)-1]
	}
	if len(train) == 0 {
		train, test = test[len(test)-1:], test[:len(test)-1]
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

func (e *experiment) Config() autolearn.ExperimentConfig {
	return append(autolearn.ExperimentConfig(nil), e.config...)
}

func (e *experiment) CanAssign(kind string) bool {
	_, ok := e.p.clusterer(kind)
	return ok
}

func rowsOf(x mat.Matrix, idx []int) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, x.At(r, j))
		}
	}
	return out
}

func (e *experiment) targets(idx []int) []float64 {
	y := make([]float64, len(idx))
	for i, r := range idx {
		y[i] = e.y[r]
	}
	return y
}

func (e *experiment) classesOf(idx []int) []int {
	y := make([]int, len(idx))
	for i, r := range idx {
		y[i] = e.classes[r]
	}
	return y
}

func (e *experiment) kinds() []string {
	switch e.setup.Task {
	case autolearn.Regression:
		return RegressionKinds
	case autolearn.Classification:
		return ClassificationKinds
	}
	return ClusteringKinds
}

// Create fits and evaluates one candidate. Supervised candidates are fitted on the training rows and evaluated on the
// holdout; clustering candidates are fitted and evaluated on every row.
func (e *experiment) Create(kind string) (autolearn.CandidateResult, error) {
	if !known(e.kinds(), kind) {
		return autolearn.CandidateResult{}, errors.Errorf("unknown %s model %q", e.setup.Task, kind)
	}
	switch e.setup.Task {
	case autolearn.Regression:
		m, _ := e.p.regressor(kind)
		return e.fitRegressor(kind, m)
	case autolearn.Classification:
		m, _ := e.p.classifier(kind)
		return e.fitClassifier(kind, m)
	}

	m, ok := e.p.clusterer(kind)
	if !ok {
		return autolearn.CandidateResult{}, errors.Errorf("%s model %q cannot assign new data", e.setup.Task, kind)
	}
	labels, err := m.Fit(e.x)
	if err != nil {
		return autolearn.CandidateResult{}, errors.Wrapf(err, "could not fit %s", kind)
	}
	e.p.log.Debug("fitted candidate", zap.String("kind", kind))
	return autolearn.CandidateResult{
		Name:    kind,
		Model:   &ClusteringModel{Kind: kind, Encoder: e.encoder, Clusterer: m},
		Metrics: eval.EvaluateClustering(eval.ClusteringMeasures, e.x, labels),
		Params:  params(kind, m),
	}, nil
}

func (e *experiment) fitRegressor(kind string, m learning.Regressor) (autolearn.CandidateResult, error) {
	if err := m.Fit(rowsOf(e.x, e.train), e.targets(e.train)); err != nil {
		return autolearn.CandidateResult{}, errors.Wrapf(err, "could not fit %s", kind)
	}
	predicted := m.Predict(rowsOf(e.x, e.test))
	e.p.log.Debug("fitted candidate", zap.String("kind", kind))
	return autolearn.CandidateResult{
		Name:    kind,
		Model:   &RegressionModel{Kind: kind, Encoder: e.encoder, Regressor: m},
		Metrics: eval.EvaluateRegression(eval.RegressionMeasures, e.targets(e.test), predicted),
		Params:  params(kind, m),
	}, nil
}

func (e *experiment) fitClassifier(kind string, m learning.Classifier) (autolearn.CandidateResult, error) {
	if err := m.Fit(rowsOf(e.x, e.train), e.classesOf(e.train), e.labels.Len()); err != nil {
		return autolearn.CandidateResult{}, errors.Wrapf(err, "could not fit %s", kind)
	}
	x := rowsOf(e.x, e.test)
	c := eval.Classification{
		Classes:       e.labels.Len(),
		Actual:        e.classesOf(e.test),
		Predicted:     learning.Predict(m, x),
		Probabilities: m.Probabilities(x),
	}
	e.p.log.Debug("fitted candidate", zap.String("kind", kind))
	return autolearn.CandidateResult{
		Name:    kind,
		Model:   &ClassificationModel{Kind: kind, Encoder: e.encoder, Labels: e.labels, Classifier: m},
		Metrics: eval.EvaluateClassification(eval.ClassificationMeasures, c),
		Params:  params(kind, m),
	}, nil
}

// defaultSort is the metric candidates are ranked by when none is requested.
func (e *experiment) defaultSort() string {
	if e.setup.Task == autolearn.Classification {
		return eval.Accuracy.Name()
	}
	return eval.RMSE.Name()
}

// Compare fits every candidate and ranks them by a metric. Candidates with equal or missing scores keep their
// comparison order.
func (e *experiment) Compare(options provider.CompareOptions) ([]autolearn.CandidateResult, error) {
	if !e.setup.Task.Supervised() {
		return nil, errors.Errorf("cannot compare %s models", e.setup.Task)
	}
	sortBy := options.Sort
	if len(sortBy) == 0 {
		sortBy = e.defaultSort()
	}

	var candidates []autolearn.CandidateResult
	for _, kind := range e.kinds() {
		c, err := e.Create(kind)
		if err != nil {
			return nil, err
		}
		if _, ok := c.Metrics.Get(sortBy); !ok {
			return nil, errors.Errorf("cannot sort by unknown metric %q", sortBy)
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, _ := candidates[i].Metrics.Get(sortBy)
		b, _ := candidates[j].Metrics.Get(sortBy)
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return eval.Better(sortBy, a, b)
	})
	return candidates, nil
}

// Tune searches the neighbourhood size of nearest neighbour candidates on the holdout. The tuned candidate is only
// returned when it scores better than the original; other kinds are returned unchanged.
func (e *experiment) Tune(candidate autolearn.CandidateResult, optimize string) (autolearn.CandidateResult, error) {
	if !e.setup.Task.Supervised() {
		return autolearn.CandidateResult{}, errors.Errorf("cannot tune %s models", e.setup.Task)
	}
	best, ok := candidate.Metrics.Get(optimize)
	if !ok {
		return autolearn.CandidateResult{}, errors.Errorf("cannot optimise unknown metric %q", optimize)
	}
	if candidate.Name != "knn" {
		return candidate, nil
	}

	tuned := candidate
	for _, k := range tuneK {
		if k > len(e.train) {
			break
		}
		var c autolearn.CandidateResult
		var err error
		if e.setup.Task == autolearn.Regression {
			c, err = e.fitRegressor(candidate.Name, &learning.KNNRegressor{K: k})
		} else {
			c, err = e.fitClassifier(candidate.Name, &learning.KNNClassifier{K: k})
		}
		if err != nil {
			return autolearn.CandidateResult{}, err
		}
		if v, _ := c.Metrics.Get(optimize); eval.Better(optimize, v, best) {
			best, tuned = v, c
		}
	}
	e.p.log.Debug("tuned candidate", zap.String("kind", candidate.Name), zap.String("optimize", optimize), zap.Float64("score", best))
	return tuned, nil
}
