// Package config loads the configuration of autolearn from a properties file.
package config

import (
	"strings"

	"github.com/hscells/autolearn/artifact"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Config is the configuration of the command line tool and server. The source and predictions files are relative to
// data.dir. Values may refer to other values, e.g. models.dir=${data.dir}/models.
type Config struct {
	DataDir     string `properties:"data.dir,default=data"`
	Source      string `properties:"data.source,default=sourcedata.csv"`
	Predictions string `properties:"data.predictions,default=predictions.csv"`

	ModelsDir string `properties:"models.dir,default=models"`
	Slot      string `properties:"models.slot,default=best_model"`

	// ClusteringModels is a comma separated allow-list of clustering kinds. The trainer default is used when empty.
	ClusteringModels string `properties:"clustering.models,default="`
	Clusters         int    `properties:"clustering.clusters,default=4"`

	Seed    int64   `properties:"seed,default=123"`
	Holdout float64 `properties:"holdout,default=0.3"`

	MaxSessions int    `properties:"sessions.max,default=128"`
	LogLevel    string `properties:"log.level,default=info"`
	Addr        string `properties:"server.addr,default=:8080"`
}

// Default is the configuration used when no properties file is given.
func Default() Config {
	c, err := Decode(properties.NewProperties())
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a properties file. An empty path loads the defaults.
func Load(path string) (Config, error) {
	if len(path) == 0 {
		return Decode(properties.NewProperties())
	}
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	return Decode(p)
}

// Parse reads properties from a string.
func Parse(s string) (Config, error) {
	p, err := properties.LoadString(s)
	if err != nil {
		return Config{}, errors.Wrap(err, "parsing config")
	}
	return Decode(p)
}

// Decode decodes and validates properties.
func Decode(p *properties.Properties) (Config, error) {
	var c Config
	if err := p.Decode(&c); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return c, c.Validate()
}

// Validate checks the values that cannot be checked by type alone.
func (c Config) Validate() error {
	switch {
	case c.Holdout <= 0 || c.Holdout >= 1:
		return errors.Errorf("holdout must be between 0 and 1, got %v", c.Holdout)
	case c.MaxSessions < 1:
		return errors.Errorf("sessions.max must be positive, got %d", c.MaxSessions)
	case c.Clusters < 2:
		return errors.Errorf("clustering.clusters must be at least 2, got %d", c.Clusters)
	case len(c.DataDir) == 0 || len(c.ModelsDir) == 0:
		return errors.New("data.dir and models.dir must be set")
	}
	if err := artifact.ValidName(c.Slot); err != nil {
		return errors.Wrapf(err, "models.slot %q", c.Slot)
	}
	return nil
}

// Clustering returns the clustering allow-list, or nil when the default should be used.
func (c Config) Clustering() []string {
	var kinds []string
	for _, k := range strings.Split(c.ClusteringModels, ",") {
		if k = strings.TrimSpace(k); len(k) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
