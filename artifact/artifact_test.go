package artifact_test

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type meanModel struct {
	Mean float64
}

func init() {
	gob.Register(meanModel{})
}

func newStore(t *testing.T) *artifact.Store {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return artifact.NewStore(t.TempDir()+"/models", artifact.Clock(func() time.Time { return at }))
}

func regression(mean float64) artifact.Artifact {
	return artifact.Artifact{
		Task:     autolearn.Regression,
		Kind:     "dummy",
		Features: []string{"rooms", "area"},
		Target:   "price",
		Model:    meanModel{Mean: mean},
	}
}

func TestSaveLoad(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.Exists())

	_, err := s.Load(autolearn.Regression)
	assert.ErrorIs(t, err, autolearn.ErrArtifactNotFound)

	require.NoError(t, s.Save(regression(300), "run-1"))
	assert.True(t, s.Exists())

	a, err := s.Load(autolearn.Regression)
	require.NoError(t, err)
	assert.Equal(t, regression(300), a)

	_, err = s.Load(autolearn.Clustering)
	assert.ErrorIs(t, err, autolearn.ErrArtifactTaskMismatch)
}

func TestSaveOverwrites(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(regression(300), "run-1"))
	require.NoError(t, s.Save(regression(120), "run-2"))

	a, err := s.Load(autolearn.Regression)
	require.NoError(t, err)
	assert.Equal(t, meanModel{Mean: 120}, a.Model)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, "run-2", info.RunID)
	assert.Equal(t, autolearn.Regression, info.Task)
	assert.Equal(t, []string{"rooms", "area"}, info.Features)
	assert.True(t, info.SavedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.NotEmpty(t, info.HumanSize)
}

// block replaces a file of the store with a non-empty directory, so it can neither be read nor overwritten.
func block(t *testing.T, path string) {
	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocked"), 0755))
}

func clustering() artifact.Artifact {
	return artifact.Artifact{Task: autolearn.Clustering, Kind: "kmeans", Features: []string{"rooms"}, Model: meanModel{Mean: 1}}
}

func TestFailedInfoWriteKeepsArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	s := artifact.NewStore(dir)
	require.NoError(t, s.Save(regression(300), "run-1"))

	block(t, filepath.Join(dir, artifact.DefaultScope, artifact.DefaultScope+"."+artifact.DefaultSlot+".yaml"))
	assert.Error(t, s.Save(clustering(), "run-2"))

	a, err := s.Load(autolearn.Regression)
	require.NoError(t, err)
	assert.Equal(t, regression(300), a)
}

func TestFailedSlotWriteRestoresInfo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	s := artifact.NewStore(dir)
	require.NoError(t, s.Save(regression(300), "run-1"))

	slot := filepath.Join(dir, artifact.DefaultScope, artifact.DefaultScope+"."+artifact.DefaultSlot)
	require.NoError(t, os.Rename(slot, slot+".bak"))
	block(t, slot)
	assert.Error(t, s.Save(clustering(), "run-2"))

	require.NoError(t, os.RemoveAll(slot))
	require.NoError(t, os.Rename(slot+".bak", slot))
	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, "run-1", info.RunID)
	assert.Equal(t, autolearn.Regression, info.Task)

	a, err := s.Load(autolearn.Regression)
	require.NoError(t, err)
	assert.Equal(t, regression(300), a)
}

func TestFailedFirstSaveLeavesNoInfo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	s := artifact.NewStore(dir)

	slot := filepath.Join(dir, artifact.DefaultScope, artifact.DefaultScope+"."+artifact.DefaultSlot)
	block(t, slot)
	assert.Error(t, s.Save(regression(300), "run-1"))

	_, err := os.Stat(slot + ".yaml")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveIsDeterministic(t *testing.T) {
	s := newStore(t)
	var first, second bytes.Buffer

	require.NoError(t, s.Save(regression(42), "run-1"))
	_, err := s.Export(&first)
	require.NoError(t, err)

	require.NoError(t, s.Save(regression(42), "run-2"))
	_, err = s.Export(&second)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())

	a, err := artifact.Decode(&second)
	require.NoError(t, err)
	assert.Equal(t, regression(42), a)
}

func TestScopes(t *testing.T) {
	s := newStore(t)
	alice, err := s.Scope("alice")
	require.NoError(t, err)
	bob, err := s.Scope("bob")
	require.NoError(t, err)

	require.NoError(t, alice.Save(regression(1), "run-a"))
	assert.True(t, alice.Exists())
	assert.False(t, bob.Exists())
	assert.False(t, s.Exists())

	_, err = bob.Load(autolearn.Regression)
	assert.ErrorIs(t, err, autolearn.ErrArtifactNotFound)
	_, err = bob.Info()
	assert.ErrorIs(t, err, autolearn.ErrArtifactNotFound)

	for _, bad := range []string{"", "../etc", "a.b", "a/b"} {
		_, err = s.Scope(bad)
		assert.ErrorIs(t, err, artifact.ErrInvalidScope, bad)
	}
}

func TestSaveRejectsUnknownTask(t *testing.T) {
	s := newStore(t)
	a := regression(1)
	a.Task = 0
	assert.Error(t, s.Save(a, "run-1"))
	assert.False(t, s.Exists())
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Remove())
	require.NoError(t, s.Save(regression(1), "run-1"))
	require.NoError(t, s.Remove())
	assert.False(t, s.Exists())

	var b bytes.Buffer
	_, err := s.Export(&b)
	assert.ErrorIs(t, err, autolearn.ErrArtifactNotFound)
}
