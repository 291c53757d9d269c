package trainer

import (
	"github.com/hscells/autolearn"
	"github.com/pkg/errors"
)

// ErrNoCandidate is returned by SelectFirstBest when no row scores above the sentinel.
var ErrNoCandidate = errors.New("no candidate scored above the sentinel")

// SelectFirstBest returns the name of the row with the highest value of a metric. A row is only selected if it
// scores strictly higher than every row before it and than the sentinel, so ties go to the first row.
func SelectFirstBest(rows []autolearn.LeaderboardRow, metric string, sentinel float64) (string, error) {
	best, name := sentinel, ""
	for _, row := range rows {
		v, ok := row.Metrics.Get(metric)
		if !ok {
			return "", errors.Errorf("candidate %q has no %s", row.Name, metric)
		}
		if v > best {
			best, name = v, row.Name
		}
	}
	if len(name) == 0 {
		return "", errors.Wrapf(ErrNoCandidate, "%s > %v", metric, sentinel)
	}
	return name, nil
}
