// Package output provides different formats of output for experiments.
package output

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Format names a family of formatters.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	YAML Format = "yaml"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, CSV, YAML:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// number returns nil for values that cannot be represented in JSON.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
