package output_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var leaderboard = autolearn.NewLeaderboard(
	autolearn.CandidateResult{Name: "kmeans", Metrics: autolearn.Metrics{{Name: "Silhouette", Value: 0.41}}},
	autolearn.CandidateResult{Name: "ap", Metrics: autolearn.Metrics{{Name: "Silhouette", Value: 0.55}, {Name: "Davies-Bouldin", Value: math.NaN()}}},
)

func TestCsvLeaderboardFormatter(t *testing.T) {
	s, err := output.CsvLeaderboardFormatter(leaderboard, "ap")
	require.NoError(t, err)
	assert.Equal(t, "Model,Silhouette,Davies-Bouldin\nkmeans,0.4100,\nap*,0.5500,\n", s)
}

type leaderboardRow struct {
	Model   string
	Winner  bool
	Metrics []struct {
		Name  string
		Value *float64
	}
}

func TestJsonLeaderboardFormatter(t *testing.T) {
	s, err := output.Leaderboard(output.JSON)(leaderboard, "ap")
	require.NoError(t, err)

	var v []leaderboardRow
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	require.Len(t, v, 2)
	assert.Equal(t, "kmeans", v[0].Model)
	assert.False(t, v[0].Winner)
	assert.True(t, v[1].Winner)

	require.Len(t, v[1].Metrics, 2)
	assert.Equal(t, "Silhouette", v[1].Metrics[0].Name)
	assert.Equal(t, 0.55, *v[1].Metrics[0].Value)
	assert.Equal(t, "Davies-Bouldin", v[1].Metrics[1].Name)
	assert.Nil(t, v[1].Metrics[1].Value)
	// kmeans has no Davies-Bouldin.
	assert.Nil(t, v[0].Metrics[1].Value)
}

func TestLeaderboardKeepsColumnOrder(t *testing.T) {
	l := autolearn.NewLeaderboard(autolearn.CandidateResult{Name: "lr", Metrics: autolearn.Metrics{
		{Name: "MAE", Value: 1}, {Name: "MSE", Value: 2}, {Name: "RMSE", Value: 1.4}, {Name: "R2", Value: 0.9}, {Name: "MAPE", Value: 0.1},
	}})
	want := []string{"MAE", "MSE", "RMSE", "R2", "MAPE"}

	s, err := output.JsonLeaderboardFormatter(l, "lr")
	require.NoError(t, err)
	var j []leaderboardRow
	require.NoError(t, json.Unmarshal([]byte(s), &j))

	s, err = output.YamlLeaderboardFormatter(l, "lr")
	require.NoError(t, err)
	var y []leaderboardRow
	require.NoError(t, yaml.Unmarshal([]byte(s), &y))

	for _, rows := range [][]leaderboardRow{j, y} {
		require.Len(t, rows, 1)
		var names []string
		for _, m := range rows[0].Metrics {
			names = append(names, m.Name)
		}
		assert.Equal(t, want, names)
	}
}

func TestYamlLeaderboardFormatter(t *testing.T) {
	s, err := output.Leaderboard(output.YAML)(leaderboard, "kmeans")
	require.NoError(t, err)

	var v []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(s), &v))
	require.Len(t, v, 2)
	assert.Equal(t, true, v[0]["winner"])
}

func TestConfigFormatters(t *testing.T) {
	config := autolearn.ExperimentConfig{{Name: "Target", Value: "price"}, {Name: "Normalize", Value: "false"}}

	s, err := output.Config(output.CSV)(config)
	require.NoError(t, err)
	assert.Equal(t, "Description,Value\nTarget,price\nNormalize,false\n", s)

	s, err = output.Config(output.JSON)(config)
	require.NoError(t, err)
	assert.Contains(t, s, `"description": "Target"`)

	s, err = output.Config(output.YAML)(config)
	require.NoError(t, err)
	assert.Contains(t, s, "value: price")
}

func TestParseFormat(t *testing.T) {
	f, err := output.ParseFormat(" YAML ")
	require.NoError(t, err)
	assert.Equal(t, output.YAML, f)
	_, err = output.ParseFormat("xml")
	assert.Error(t, err)
}
