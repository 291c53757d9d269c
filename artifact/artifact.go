// Package artifact persists the model selected by a training run so that it can be reloaded for inference.
//
// Each scope owns a single slot. Saving overwrites the slot unconditionally; the task family the model was trained
// for is stored alongside it so that the model is never reloaded for a different task.
package artifact

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/logger"
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSlot is the name of the slot artifacts are saved to.
	DefaultSlot = "best_model"
	// DefaultScope is the scope of a store created with NewStore.
	DefaultScope = "default"

	infoSuffix = ".yaml"
)

var validScope = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ErrInvalidScope is returned for scope keys that cannot be used as a directory name.
var ErrInvalidScope = errors.New("invalid artifact scope")

// Artifact is the persisted result of a training run.
type Artifact struct {
	Task autolearn.TaskFamily
	// Kind is the name of the selected candidate.
	Kind string
	// Features are the columns the model was trained on, in order.
	Features []string
	Target   string
	Model    autolearn.Model
}

// Info describes the artifact currently held by a slot.
type Info struct {
	RunID    string               `json:"run_id" yaml:"run_id"`
	Task     autolearn.TaskFamily `json:"task" yaml:"task"`
	Kind     string               `json:"kind" yaml:"kind"`
	Target   string               `json:"target,omitempty" yaml:"target,omitempty"`
	Features []string             `json:"features" yaml:"features"`
	SavedAt  time.Time            `json:"saved_at" yaml:"saved_at"`
	Size     int64                `json:"size" yaml:"size"`
	// HumanSize is Size formatted for display.
	HumanSize string `json:"human_size" yaml:"human_size"`
}

// Store saves and loads artifacts for one scope. Stores for other scopes share the same underlying storage and are
// obtained with Scope.
type Store struct {
	dv    *diskv.Diskv
	scope string
	slot  string
	now   func() time.Time
	log   *zap.Logger
}

// StoreOption configures a store.
type StoreOption func(*Store)

// Slot sets the name of the slot artifacts are saved to.
func Slot(name string) StoreOption {
	return func(s *Store) {
		if len(name) > 0 {
			s.slot = name
		}
	}
}

// Logger sets the logger of the store.
func Logger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger.OrNop(l)
	}
}

// Clock sets the function used to timestamp saved artifacts.
func Clock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// scopeTransform places every key in the directory of its scope. Keys are of the form "<scope>.<slot>".
func scopeTransform(key string) []string {
	return []string{strings.SplitN(key, ".", 2)[0]}
}

// NewStore creates a store persisting artifacts under dir, in the default scope.
func NewStore(dir string, options ...StoreOption) *Store {
	s := &Store{
		scope: DefaultScope,
		slot:  DefaultSlot,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	s.dv = diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      strings.TrimRight(dir, string(os.PathSeparator)) + ".tmp",
		Transform:    scopeTransform,
		CacheSizeMax: 0,
		Compression:  diskv.NewGzipCompression(),
	})
	constructor()
	return s
}

func constructor() {
	gob.Register(autolearn.Metrics{})
	gob.Register(autolearn.ExperimentConfig{})
}

// ValidName reports an error for names that cannot be used as a scope or slot.
func ValidName(name string) error {
	if !validScope.MatchString(name) {
		return errors.Wrapf(ErrInvalidScope, "%q", name)
	}
	return nil
}

// Scope returns a store for another scope, sharing the storage of s.
func (s *Store) Scope(key string) (*Store, error) {
	if err := ValidName(key); err != nil {
		return nil, err
	}
	c := *s
	c.scope = key
	return &c, nil
}

// Name is the scope of the store.
func (s *Store) Name() string {
	return s.scope
}

func (s *Store) key() string {
	return s.scope + "." + s.slot
}

// Encode encodes an artifact the way it is written to a slot. Identical artifacts encode to identical bytes.
func Encode(a Artifact) ([]byte, error) {
	var buff bytes.Buffer
	if err := gob.NewEncoder(&buff).Encode(a); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// Decode decodes an artifact written by Encode.
func Decode(r io.Reader) (Artifact, error) {
	var a Artifact
	err := gob.NewDecoder(r).Decode(&a)
	return a, err
}

// Save overwrites the slot of the store with an artifact. The info is written before the slot, and restored when
// the slot cannot be written, so a failed save leaves the previous artifact and its info in place.
func (s *Store) Save(a Artifact, runID string) error {
	if !a.Task.Valid() {
		return errors.Errorf("artifact has no task family")
	}
	b, err := Encode(a)
	if err != nil {
		return errors.Wrap(err, "could not encode artifact")
	}

	info := Info{
		RunID:     runID,
		Task:      a.Task,
		Kind:      a.Kind,
		Target:    a.Target,
		Features:  a.Features,
		SavedAt:   s.now().UTC(),
		Size:      int64(len(b)),
		HumanSize: humanize.Bytes(uint64(len(b))),
	}
	y, err := yaml.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "could not encode artifact info")
	}

	infoKey := s.key() + infoSuffix
	var previous []byte
	if s.dv.Has(infoKey) {
		if previous, err = s.dv.Read(infoKey); err != nil {
			return errors.Wrapf(err, "could not read artifact info %s", s.key())
		}
	}
	if err := s.dv.Write(infoKey, y); err != nil {
		return errors.Wrapf(err, "could not save artifact info to %s", s.key())
	}
	if err := s.dv.Write(s.key(), b); err != nil {
		s.restoreInfo(infoKey, previous)
		return errors.Wrapf(err, "could not save artifact to %s", s.key())
	}

	s.log.Info("saved artifact",
		zap.String("scope", s.scope),
		zap.String("slot", s.slot),
		zap.Stringer("task", a.Task),
		zap.String("kind", a.Kind),
		zap.String("run", runID),
		zap.String("size", info.HumanSize))
	return nil
}

// restoreInfo puts back the info of the previous artifact, or erases the info when there was none.
func (s *Store) restoreInfo(key string, previous []byte) {
	var err error
	if previous == nil {
		err = s.dv.Erase(key)
	} else {
		err = s.dv.Write(key, previous)
	}
	if err != nil {
		s.log.Error("could not restore artifact info", zap.String("scope", s.scope), zap.String("key", key), zap.Error(err))
	}
}

// Load reads the artifact in the slot of the store. It fails with autolearn.ErrArtifactNotFound when nothing has
// been saved, and with autolearn.ErrArtifactTaskMismatch when the artifact was trained for another task family.
func (s *Store) Load(task autolearn.TaskFamily) (Artifact, error) {
	if !s.Exists() {
		return Artifact{}, errors.Wrapf(autolearn.ErrArtifactNotFound, "scope %q", s.scope)
	}
	b, err := s.dv.Read(s.key())
	if err != nil {
		return Artifact{}, errors.Wrapf(err, "could not read artifact %s", s.key())
	}
	a, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Artifact{}, errors.Wrapf(err, "could not decode artifact %s", s.key())
	}
	if a.Task != task {
		return Artifact{}, errors.Wrapf(autolearn.ErrArtifactTaskMismatch, "artifact is %s, requested %s", a.Task, task)
	}
	s.log.Debug("loaded artifact", zap.String("scope", s.scope), zap.Stringer("task", task), zap.String("kind", a.Kind))
	return a, nil
}

// Exists reports whether an artifact has been saved in the slot of the store.
func (s *Store) Exists() bool {
	return s.dv.Has(s.key())
}

// Info returns the metadata of the artifact in the slot of the store.
func (s *Store) Info() (Info, error) {
	var info Info
	if !s.Exists() {
		return info, errors.Wrapf(autolearn.ErrArtifactNotFound, "scope %q", s.scope)
	}
	b, err := s.dv.Read(s.key() + infoSuffix)
	if err != nil {
		return info, errors.Wrapf(err, "could not read artifact info %s", s.key())
	}
	err = yaml.Unmarshal(b, &info)
	return info, err
}

// Export writes the encoded artifact in the slot of the store to w.
func (s *Store) Export(w io.Writer) (int64, error) {
	if !s.Exists() {
		return 0, errors.Wrapf(autolearn.ErrArtifactNotFound, "scope %q", s.scope)
	}
	r, err := s.dv.ReadStream(s.key(), true)
	if err != nil {
		return 0, errors.Wrapf(err, "could not read artifact %s", s.key())
	}
	defer r.Close()
	return io.Copy(w, r)
}

// Remove erases the artifact in the slot of the store, if any.
func (s *Store) Remove() error {
	if !s.Exists() {
		return nil
	}
	if err := s.dv.Erase(s.key()); err != nil {
		return err
	}
	if s.dv.Has(s.key() + infoSuffix) {
		return s.dv.Erase(s.key() + infoSuffix)
	}
	return nil
}
