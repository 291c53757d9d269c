// Package autolearn provides the shared types for running reproducible model selection experiments:
// the task family an experiment belongs to, the candidates a search produces, and the outcome of selecting a winner.
package autolearn

import (
	"fmt"
	"strings"
)

// TaskFamily is the broad kind of learning problem an experiment solves. It fixes the training protocol, the
// metric used to select a winner and how a stored model must be invoked to score new data.
type TaskFamily uint8

const (
	// Regression estimates a numeric target.
	Regression TaskFamily = iota + 1
	// Classification predicts a label for a target.
	Classification
	// Clustering assigns rows to clusters without a target.
	Clustering
)

// TaskFamilies lists every task family in the order they are presented to users.
var TaskFamilies = []TaskFamily{Regression, Classification, Clustering}

func (t TaskFamily) String() string {
	switch t {
	case Regression:
		return "Regression"
	case Classification:
		return "Classification"
	case Clustering:
		return "Clustering"
	}
	return fmt.Sprintf("TaskFamily(%d)", uint8(t))
}

// Valid reports whether t is one of the known task families.
func (t TaskFamily) Valid() bool {
	return t >= Regression && t <= Clustering
}

// Supervised reports whether experiments of this family require a target column.
func (t TaskFamily) Supervised() bool {
	return t == Regression || t == Classification
}

// ParseTaskFamily parses the name of a task family, ignoring case.
func ParseTaskFamily(s string) (TaskFamily, error) {
	for _, t := range TaskFamilies {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown task family %q", s)
}

// MarshalText encodes the task family by name.
func (t TaskFamily) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid task family %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a task family from its name.
func (t *TaskFamily) UnmarshalText(b []byte) error {
	v, err := ParseTaskFamily(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
