package preprocess

import (
	"sort"

	"github.com/hscells/autolearn/dataset"
	"github.com/pkg/errors"
	"github.com/xtgo/set"
)

// Labels maps the classes of a categorical target to indices. Classes are sorted so that the same data always
// produces the same encoding.
type Labels struct {
	Classes []string
}

// FitLabels fits the classes of a target. Missing values are not a class.
func FitLabels(values []string) (Labels, error) {
	var classes []string
	for _, v := range values {
		if !dataset.IsMissing(v) {
			classes = append(classes, v)
		}
	}
	classes = set.Strings(classes)
	if len(classes) < 2 {
		return Labels{}, errors.Errorf("target has %d classes, at least 2 are required", len(classes))
	}
	return Labels{Classes: classes}, nil
}

// Index returns the index of a class, or -1.
func (l Labels) Index(class string) int {
	i := sort.SearchStrings(l.Classes, class)
	if i < len(l.Classes) && l.Classes[i] == class {
		return i
	}
	return -1
}

// Encode maps every value to its class index.
func (l Labels) Encode(values []string) ([]int, error) {
	y := make([]int, len(values))
	for i, v := range values {
		y[i] = l.Index(v)
		if y[i] < 0 {
			return nil, errors.Errorf("row %d has unknown class %q", i, v)
		}
	}
	return y, nil
}

// Len is the number of classes.
func (l Labels) Len() int {
	return len(l.Classes)
}
