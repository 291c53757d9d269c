package autolearn

import "github.com/pkg/errors"

var (
	// ErrInvalidSession is returned when an experiment is begun with a missing or invalid dataset or target.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNoActiveSession is returned when training or inference is attempted before an experiment is begun.
	ErrNoActiveSession = errors.New("no active session")
	// ErrTrainingFailure is returned when configuring, searching, fitting or scoring candidates fails.
	// No artifact is persisted when it is returned.
	ErrTrainingFailure = errors.New("training failure")
	// ErrArtifactNotFound is returned when inference is attempted before any successful training run.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrArtifactTaskMismatch is returned when a stored artifact was produced by a different task family than
	// the one it is being loaded for.
	ErrArtifactTaskMismatch = errors.New("artifact task family mismatch")
	// ErrPrediction is returned when scoring a dataset with a stored model fails.
	ErrPrediction = errors.New("prediction error")
)
