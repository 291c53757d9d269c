package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"github.com/hscells/autolearn"
	"gopkg.in/yaml.v3"
)

// ConfigFormatter is used in a pipeline to output the configuration of an experiment.
type ConfigFormatter func(config autolearn.ExperimentConfig) (string, error)

// Config returns the configuration formatter of a format.
func Config(f Format) ConfigFormatter {
	switch f {
	case CSV:
		return CsvConfigFormatter
	case YAML:
		return YamlConfigFormatter
	}
	return JsonConfigFormatter
}

type param struct {
	Name  string `json:"description" yaml:"description"`
	Value string `json:"value" yaml:"value"`
}

func params(config autolearn.ExperimentConfig) []param {
	p := make([]param, len(config))
	for i, c := range config {
		p[i] = param{Name: c.Name, Value: c.Value}
	}
	return p
}

// JsonConfigFormatter outputs the configuration as a JSON list, in order.
func JsonConfigFormatter(config autolearn.ExperimentConfig) (string, error) {
	v, err := json.MarshalIndent(params(config), "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// YamlConfigFormatter outputs the configuration as a YAML list, in order.
func YamlConfigFormatter(config autolearn.ExperimentConfig) (string, error) {
	v, err := yaml.Marshal(params(config))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// CsvConfigFormatter outputs the configuration as CSV.
func CsvConfigFormatter(config autolearn.ExperimentConfig) (string, error) {
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	w.Write([]string{"Description", "Value"})
	for _, c := range config {
		w.Write([]string{c.Name, c.Value})
	}
	w.Flush()
	return b.String(), w.Error()
}
