package pipeline_test

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/output"
	"github.com/hscells/autolearn/pipeline"
	"github.com/hscells/autolearn/predictor"
	"github.com/hscells/autolearn/provider"
	"github.com/hscells/autolearn/provider/native"
	"github.com/hscells/autolearn/session"
	"github.com/hscells/autolearn/trainer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs(groups int) *dataset.Dataset {
	var rows [][]string
	for i := 0; i < 12*groups; i++ {
		g := i % groups
		rows = append(rows, []string{
			strconv.FormatFloat(float64(g*10)+float64(i%4)*0.1, 'f', -1, 64),
			strconv.FormatFloat(float64(g*-10)+float64(i%3)*0.1, 'f', -1, 64),
			fmt.Sprintf("group-%d", g),
		})
	}
	return dataset.MustNew([]string{"a", "b", "label"}, rows)
}

func newPipeline(t *testing.T, components ...func() interface{}) pipeline.Pipeline {
	p := native.New(native.Clusters(3))
	store := artifact.NewStore(filepath.Join(t.TempDir(), "artifacts"))
	return pipeline.NewPipeline(
		session.NewRegistry(session.DefaultMaxScopes),
		trainer.New(p, store),
		predictor.New(store, p, p),
		components...)
}

func TestPipelineClassification(t *testing.T) {
	dir := t.TempDir()
	pl := newPipeline(t,
		pipeline.Output(output.CsvLeaderboardFormatter),
		pipeline.ConfigOutput(output.JsonConfigFormatter),
		pipeline.Gateway(dataset.NewGateway(dir, "source.csv", "predictions.csv", nil)))

	data := blobs(2)
	_, err := pl.Begin("alpha", data, autolearn.Classification, "label")
	require.NoError(t, err)

	result, err := pl.Train("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", result.Scope)
	assert.Equal(t, autolearn.Classification, result.Report.Task)
	require.Len(t, result.Leaderboards, 1)
	assert.Contains(t, result.Leaderboards[0], result.Report.Outcome.WinnerName+"*")
	require.Len(t, result.Configs, 1)
	assert.Contains(t, result.Configs[0], "Target type")

	s, err := pl.Registry.Current("alpha")
	require.NoError(t, err)
	assert.Equal(t, session.Trained, s.State())
	assert.Equal(t, result.Report.RunID, s.RunID)

	predictions, err := pl.Predict("alpha", data)
	require.NoError(t, err)
	assert.True(t, predictions.HasColumn(provider.PredictionLabel))
	assert.True(t, predictions.HasColumn(provider.PredictionScore))

	require.NoError(t, pl.SavePredictions(predictions))
	saved, err := pl.Gateway.Load(pl.Gateway.PredictionsPath)
	require.NoError(t, err)
	assert.Equal(t, predictions.Len(), saved.Len())
	assert.Equal(t, predictions.Columns(), saved.Columns())
}

func TestPipelineClustering(t *testing.T) {
	pl := newPipeline(t, pipeline.Output(output.YamlLeaderboardFormatter))

	data := blobs(3).Drop("label")
	_, err := pl.Begin("beta", data, autolearn.Clustering, "ignored")
	require.NoError(t, err)
	result, err := pl.Train("beta")
	require.NoError(t, err)
	assert.Contains(t, trainer.DefaultClusteringModels, result.Report.Outcome.WinnerName)

	predictions, err := pl.Predict("beta", data)
	require.NoError(t, err)
	clusters, err := predictions.Column(provider.ClusterLabel)
	require.NoError(t, err)
	for _, c := range clusters {
		assert.True(t, strings.HasPrefix(c, "Cluster "))
	}
}

func TestPipelineScopesAreIsolated(t *testing.T) {
	pl := newPipeline(t)

	_, err := pl.Begin("alpha", blobs(2), autolearn.Classification, "label")
	require.NoError(t, err)
	_, err = pl.Train("alpha")
	require.NoError(t, err)

	// No session in the other scope.
	_, err = pl.Predict("beta", blobs(2))
	assert.True(t, errors.Is(err, autolearn.ErrNoActiveSession))
	_, err = pl.Train("beta")
	assert.True(t, errors.Is(err, autolearn.ErrNoActiveSession))

	// A session without an artifact.
	_, err = pl.Begin("beta", blobs(2), autolearn.Classification, "label")
	require.NoError(t, err)
	_, err = pl.Predict("beta", blobs(2))
	assert.True(t, errors.Is(err, autolearn.ErrArtifactNotFound))
}

func TestPipelineTaskMismatch(t *testing.T) {
	pl := newPipeline(t)

	_, err := pl.Begin("alpha", blobs(2), autolearn.Classification, "label")
	require.NoError(t, err)
	_, err = pl.Train("alpha")
	require.NoError(t, err)

	// A new clustering session does not change the saved classification model.
	data := blobs(2).Drop("label")
	_, err = pl.Begin("alpha", data, autolearn.Clustering, "")
	require.NoError(t, err)
	_, err = pl.Predict("alpha", data)
	assert.True(t, errors.Is(err, autolearn.ErrArtifactTaskMismatch))
}

func TestPipelineInvalid(t *testing.T) {
	pl := newPipeline(t)

	_, err := pl.Begin("alpha", blobs(2), autolearn.Regression, "missing")
	assert.True(t, errors.Is(err, autolearn.ErrInvalidSession))
	_, err = pl.Begin("../alpha", blobs(2), autolearn.Classification, "label")
	require.NoError(t, err)
	_, err = pl.Train("../alpha")
	assert.True(t, errors.Is(err, autolearn.ErrInvalidSession))

	assert.Error(t, pl.SavePredictions(blobs(2)))
}

func TestPipelineFailedTraining(t *testing.T) {
	pl := newPipeline(t)

	// A regression target that is not numeric cannot be set up.
	_, err := pl.Begin("alpha", blobs(2), autolearn.Regression, "label")
	require.NoError(t, err)
	_, err = pl.Train("alpha")
	assert.True(t, errors.Is(err, autolearn.ErrTrainingFailure))

	s, err := pl.Registry.Current("alpha")
	require.NoError(t, err)
	assert.Equal(t, session.Failed, s.State())
	assert.Empty(t, s.RunID)
}
