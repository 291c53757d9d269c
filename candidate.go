package autolearn

import (
	"math"
)

// Model is an opaque fitted model produced by a model search provider. The orchestrator never inspects it; it is
// only handed back to the provider that created it. Concrete model types must be registered with encoding/gob so
// that they can be persisted.
type Model interface{}

// Metric is a named numeric evaluation of a candidate.
type Metric struct {
	Name  string
	Value float64
}

// Metrics maps metric names to values. The order of the metrics is the order the provider reported them in, which
// is also the order columns are displayed in.
type Metrics []Metric

// Get returns the value of the named metric.
func (m Metrics) Get(name string) (float64, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric.Value, true
		}
	}
	return math.NaN(), false
}

// Set returns a copy of the metrics with the named metric set to v, appending it if it does not exist.
func (m Metrics) Set(name string, v float64) Metrics {
	c := make(Metrics, len(m), len(m)+1)
	copy(c, m)
	for i := range c {
		if c[i].Name == name {
			c[i].Value = v
			return c
		}
	}
	return append(c, Metric{Name: name, Value: v})
}

// Names returns the metric names in order.
func (m Metrics) Names() []string {
	names := make([]string, len(m))
	for i, metric := range m {
		names[i] = metric.Name
	}
	return names
}

// Param is a single entry of a configuration record.
type Param struct {
	Name  string
	Value string
}

// ExperimentConfig is the normalised record describing how an experiment (or a candidate) was configured. It is
// kept for display and audit only.
type ExperimentConfig []Param

// Get returns the value of the named parameter.
func (c ExperimentConfig) Get(name string) (string, bool) {
	for _, p := range c {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// CandidateResult is a single fitted candidate produced during a search, paired with its evaluation.
type CandidateResult struct {
	// Name identifies the model kind of the candidate (e.g. "kmeans").
	Name    string
	Model   Model
	Metrics Metrics
	// Params is a snapshot of the candidate's configuration.
	Params ExperimentConfig
}

// LeaderboardRow is one evaluated candidate.
type LeaderboardRow struct {
	Name    string
	Metrics Metrics
}

// Leaderboard is the comparison table of an experiment. Rows are kept in the order candidates were evaluated.
type Leaderboard struct {
	Columns []string
	Rows    []LeaderboardRow
}

// Append adds a row to the leaderboard, extending the columns with any metric that has not been seen before.
func (l *Leaderboard) Append(name string, metrics Metrics) {
	for _, n := range metrics.Names() {
		seen := false
		for _, c := range l.Columns {
			if c == n {
				seen = true
				break
			}
		}
		if !seen {
			l.Columns = append(l.Columns, n)
		}
	}
	l.Rows = append(l.Rows, LeaderboardRow{Name: name, Metrics: metrics})
}

// Index returns the position of the named row, or -1.
func (l Leaderboard) Index(name string) int {
	for i, row := range l.Rows {
		if row.Name == name {
			return i
		}
	}
	return -1
}

// Len is the number of rows.
func (l Leaderboard) Len() int {
	return len(l.Rows)
}

// NewLeaderboard creates a leaderboard from candidates in the order they were evaluated.
func NewLeaderboard(candidates ...CandidateResult) Leaderboard {
	var l Leaderboard
	for _, c := range candidates {
		l.Append(c.Name, c.Metrics)
	}
	return l
}

// SelectionOutcome is the result of applying a selection policy to the candidates of an experiment.
type SelectionOutcome struct {
	Winner     Model
	WinnerName string
	// Leaderboard preserves evaluation order; only WinnerName points at the selected row.
	Leaderboard Leaderboard
}
