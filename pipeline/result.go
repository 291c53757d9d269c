package pipeline

import (
	"github.com/hscells/autolearn/trainer"
)

// Result is the output of training a pipeline.
type Result struct {
	Scope  string
	Report trainer.Report
	// Leaderboards and Configs hold the output of each configured formatter, in order.
	Leaderboards []string
	Configs      []string
}
