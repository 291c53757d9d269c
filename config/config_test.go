package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hscells/autolearn/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "sourcedata.csv", c.Source)
	assert.Equal(t, "predictions.csv", c.Predictions)
	assert.Equal(t, "models", c.ModelsDir)
	assert.Equal(t, "best_model", c.Slot)
	assert.Equal(t, 128, c.MaxSessions)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, int64(123), c.Seed)
	assert.Equal(t, 0.3, c.Holdout)
	assert.Equal(t, 4, c.Clusters)
	assert.Nil(t, c.Clustering())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autolearn.properties")
	require.NoError(t, os.WriteFile(path, []byte(`
# experiment
data.dir = /srv/autolearn
models.dir = ${data.dir}/models
clustering.models = kmeans, birch
holdout = 0.25
seed = 7
log.level = debug
`), 0644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/autolearn", c.DataDir)
	assert.Equal(t, "/srv/autolearn/models", c.ModelsDir)
	assert.Equal(t, "sourcedata.csv", c.Source)
	assert.Equal(t, []string{"kmeans", "birch"}, c.Clustering())
	assert.Equal(t, 0.25, c.Holdout)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, "debug", c.LogLevel)

	c, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}

func TestInvalid(t *testing.T) {
	for _, s := range []string{
		"holdout = 1",
		"holdout = 0",
		"holdout = half",
		"sessions.max = 0",
		"clustering.clusters = 1",
		"models.slot = ../escape",
		"seed = abc",
	} {
		_, err := config.Parse(s)
		assert.Error(t, err, s)
	}
}
