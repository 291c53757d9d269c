package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"github.com/hscells/autolearn"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LeaderboardFormatter is used in a pipeline to output the candidates compared during training. The winner is
// marked in every format.
type LeaderboardFormatter func(leaderboard autolearn.Leaderboard, winner string) (string, error)

// Leaderboard returns the leaderboard formatter of a format.
func Leaderboard(f Format) LeaderboardFormatter {
	switch f {
	case CSV:
		return CsvLeaderboardFormatter
	case YAML:
		return YamlLeaderboardFormatter
	}
	return JsonLeaderboardFormatter
}

type metric struct {
	Name  string   `json:"name" yaml:"name"`
	Value *float64 `json:"value" yaml:"value"`
}

type row struct {
	Model   string   `json:"model" yaml:"model"`
	Winner  bool     `json:"winner" yaml:"winner"`
	Metrics []metric `json:"metrics" yaml:"metrics"`
}

// rows lists the metrics of every row in column order. Metrics a row does not have are null.
func rows(leaderboard autolearn.Leaderboard, winner string) []row {
	r := make([]row, len(leaderboard.Rows))
	for i, lr := range leaderboard.Rows {
		r[i] = row{Model: lr.Name, Winner: lr.Name == winner, Metrics: make([]metric, len(leaderboard.Columns))}
		for j, c := range leaderboard.Columns {
			v, _ := lr.Metrics.Get(c)
			r[i].Metrics[j] = metric{Name: c, Value: number(v)}
		}
	}
	return r
}

// JsonLeaderboardFormatter outputs the leaderboard as a JSON list, in evaluation order.
func JsonLeaderboardFormatter(leaderboard autolearn.Leaderboard, winner string) (string, error) {
	v, err := json.MarshalIndent(rows(leaderboard, winner), "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// YamlLeaderboardFormatter outputs the leaderboard as a YAML list, in evaluation order.
func YamlLeaderboardFormatter(leaderboard autolearn.Leaderboard, winner string) (string, error) {
	v, err := yaml.Marshal(rows(leaderboard, winner))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// CsvLeaderboardFormatter outputs the leaderboard as CSV with a Model column followed by each metric column. The
// winning row is marked with a trailing asterisk on its name.
func CsvLeaderboardFormatter(leaderboard autolearn.Leaderboard, winner string) (string, error) {
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	if err := w.Write(append([]string{"Model"}, leaderboard.Columns...)); err != nil {
		return "", err
	}
	for _, lr := range leaderboard.Rows {
		name := lr.Name
		if name == winner {
			name += "*"
		}
		record := []string{name}
		for _, c := range leaderboard.Columns {
			v, _ := lr.Metrics.Get(c)
			record = append(record, formatFloat(v))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "could not format leaderboard")
	}
	return b.String(), nil
}
