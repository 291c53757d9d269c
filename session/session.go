// Package session manages experiment sessions: the dataset, target and task family an experiment is run with, and
// the lifecycle state of the experiment.
package session

import (
	"fmt"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/pkg/errors"
)

// State is the lifecycle state of a session.
type State uint8

const (
	// Ready sessions have been begun but not yet trained.
	Ready State = iota
	// Training sessions have a training run in progress.
	Training
	// Trained sessions have completed a training run and persisted an artifact.
	Trained
	// Failed sessions have completed a training run that did not persist an artifact.
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Training:
		return "training"
	case Trained:
		return "trained"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", s)
}

// transitions lists the states each state may move to.
var transitions = map[State][]State{
	Ready:    {Training},
	Training: {Trained, Failed},
	Trained:  {Training},
	Failed:   {Training},
}

// ErrTransition is returned when a session is moved to a state it cannot reach from its current state.
var ErrTransition = errors.New("invalid session state transition")

// Session is an experiment session. The dataset of a session is never modified; beginning a new experiment creates
// a new session.
type Session struct {
	Data   *dataset.Dataset
	Target string
	Task   autolearn.TaskFamily
	// RunID is the identifier of the last training run.
	RunID string

	state State
}

// Begin validates the inputs of an experiment and creates a session for it. Supervised tasks require a target that
// names a column of the dataset; the target of clustering sessions is cleared.
func Begin(data *dataset.Dataset, task autolearn.TaskFamily, target string) (*Session, error) {
	if !task.Valid() {
		return nil, errors.Wrapf(autolearn.ErrInvalidSession, "unknown task family %d", task)
	}
	if err := dataset.Validate(data); err != nil {
		return nil, errors.Wrap(autolearn.ErrInvalidSession, err.Error())
	}
	if task.Supervised() {
		if len(target) == 0 {
			return nil, errors.Wrapf(autolearn.ErrInvalidSession, "%s requires a target column", task)
		}
		if !data.HasColumn(target) {
			return nil, errors.Wrapf(autolearn.ErrInvalidSession, "target column %q not in dataset", target)
		}
		if data.Width() < 2 {
			return nil, errors.Wrapf(autolearn.ErrInvalidSession, "%s requires at least one feature column", task)
		}
	} else {
		target = ""
	}
	return &Session{
		Data:   data,
		Target: target,
		Task:   task,
		state:  Ready,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Transition moves the session to the next state.
func (s *Session) Transition(next State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == next {
			s.state = next
			return nil
		}
	}
	return errors.Wrapf(ErrTransition, "%s -> %s", s.state, next)
}

// Features returns the columns of the dataset models are trained on.
func (s *Session) Features() []string {
	var features []string
	for _, c := range s.Data.Columns() {
		if c != s.Target {
			features = append(features, c)
		}
	}
	return features
}
