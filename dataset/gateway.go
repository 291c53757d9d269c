package dataset

import (
	"os"
	"path/filepath"

	"github.com/hscells/autolearn/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrSourceNotFound is returned when no source data has been saved yet.
var ErrSourceNotFound = errors.New("source data not found")

// Gateway loads and saves the CSV files an experiment reads its source data from and writes its predictions to.
type Gateway struct {
	SourcePath      string
	PredictionsPath string

	log *zap.Logger
}

// NewGateway creates a gateway storing the source data and predictions files inside dir.
func NewGateway(dir, source, predictions string, log *zap.Logger) Gateway {
	return Gateway{
		SourcePath:      filepath.Join(dir, source),
		PredictionsPath: filepath.Join(dir, predictions),
		log:             logger.OrNop(log),
	}
}

// LoadSource loads the saved source data.
func (g Gateway) LoadSource() (*Dataset, error) {
	if _, err := os.Stat(g.SourcePath); os.IsNotExist(err) {
		g.logger().Warn("source data not found", zap.String("path", g.SourcePath))
		return nil, ErrSourceNotFound
	}
	return g.Load(g.SourcePath)
}

// SaveSource replaces the saved source data.
func (g Gateway) SaveSource(d *Dataset) error {
	return g.Save(g.SourcePath, d)
}

// SavePredictions replaces the saved predictions.
func (g Gateway) SavePredictions(d *Dataset) error {
	return g.Save(g.PredictionsPath, d)
}

// Load reads a dataset from a CSV file.
func (g Gateway) Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		g.logger().Error("could not load data", zap.String("path", path), zap.Error(err))
		return nil, errors.Wrapf(err, "could not load %s", path)
	}
	g.logger().Info("loaded data", zap.String("path", path), zap.Int("rows", d.Len()), zap.Int("columns", d.Width()))
	return d, nil
}

// Save writes a dataset to a CSV file. The file is written next to its destination and renamed into place, so a
// failed save never leaves a partially written file behind.
func (g Gateway) Save(path string, d *Dataset) error {
	if d == nil {
		return errors.New("cannot save a nil dataset")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", path)
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	tmp := f.Name()
	if err := d.Write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "could not write %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "could not save %s", path)
	}
	g.logger().Info("saved data", zap.String("path", path), zap.Int("rows", d.Len()))
	return nil
}

func (g Gateway) logger() *zap.Logger {
	return logger.OrNop(g.log)
}
