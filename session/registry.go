package session

import (
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/dataset"
	"github.com/pkg/errors"
)

// DefaultMaxScopes is the number of scopes a registry keeps sessions for when no bound is given.
const DefaultMaxScopes = 128

// Registry holds the active session of each scope. A scope is an opaque key, such as a tenant or user, and sessions
// of one scope are never visible to another. When more than the configured number of scopes are live, the session
// of the least recently used scope is evicted.
type Registry struct {
	mu       sync.Mutex
	sessions *simplelru.LRU
}

// NewRegistry creates a registry holding at most max scopes.
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = DefaultMaxScopes
	}
	l, err := simplelru.NewLRU(max, nil)
	if err != nil {
		panic(err)
	}
	return &Registry{sessions: l}
}

// Begin starts a new experiment for a scope, replacing any previous session of that scope. When validation fails the
// previous session is kept.
func (r *Registry) Begin(scope string, data *dataset.Dataset, task autolearn.TaskFamily, target string) (*Session, error) {
	s, err := Begin(data, task, target)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Add(scope, s)
	return s, nil
}

// Current returns the active session of a scope.
func (r *Registry) Current(scope string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.sessions.Get(scope)
	if !ok {
		return nil, errors.Wrapf(autolearn.ErrNoActiveSession, "scope %q", scope)
	}
	return v.(*Session), nil
}

// TaskFamily returns the task family of the active session of a scope. It reports false when there is none.
func (r *Registry) TaskFamily(scope string) (autolearn.TaskFamily, bool) {
	s, err := r.Current(scope)
	if err != nil {
		return 0, false
	}
	return s.Task, true
}

// Transition moves the active session of a scope to the next state.
func (r *Registry) Transition(scope string, next State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.sessions.Peek(scope)
	if !ok {
		return errors.Wrapf(autolearn.ErrNoActiveSession, "scope %q", scope)
	}
	return v.(*Session).Transition(next)
}

// SetRunID records the identifier of the last training run of a scope.
func (r *Registry) SetRunID(scope, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.sessions.Peek(scope); ok {
		v.(*Session).RunID = id
	}
}

// End removes the session of a scope.
func (r *Registry) End(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions.Remove(scope)
}

// Len is the number of live scopes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Len()
}
