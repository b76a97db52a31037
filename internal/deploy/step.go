package deploy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/runner"
)

// Status is the classification of a finished step or deployment.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkip    Status = "skip"
	StatusFailure Status = "failure"
)

// SkipFunc reports whether a non-zero exit is benign for a step.
type SkipFunc func(res runner.Result) bool

// DefaultSkipMarkers match git's output when a commit has nothing staged.
var DefaultSkipMarkers = []string{"nothing to commit"}

// OutputContains returns a SkipFunc matching any marker in stdout or stderr.
// Empty markers are ignored.
func OutputContains(markers ...string) SkipFunc {
	return func(res runner.Result) bool {
		for _, m := range markers {
			if m == "" {
				continue
			}
			if strings.Contains(res.Stdout, m) || strings.Contains(res.Stderr, m) {
				return true
			}
		}
		return false
	}
}

// NothingToCommit is the default commit skip predicate.
var NothingToCommit = OutputContains(DefaultSkipMarkers...)

// Classify maps a command result to a status. A nil skip never skips.
func Classify(res runner.Result, skip SkipFunc) Status {
	if res.ExitCode == 0 {
		return StatusSuccess
	}
	if skip != nil && skip(res) {
		return StatusSkip
	}
	return StatusFailure
}

// Step is one command of the pipeline.
type Step struct {
	Name string
	Spec runner.Spec
	Skip SkipFunc
}

// StepResult records what happened when a step ran.
type StepResult struct {
	Name   string
	Status Status
	Result runner.Result
	// Err is the failure reason; nil unless Status is StatusFailure.
	Err error
}

// Outcome summarises an attempted deployment. Steps holds only the steps that
// were attempted, in order.
type Outcome struct {
	Steps  []StepResult
	Status Status
}

// OK reports whether every attempted step succeeded or was skipped.
func (o Outcome) OK() bool {
	return o.Status != StatusFailure
}

// Failed returns the failing step, if any.
func (o Outcome) Failed() (StepResult, bool) {
	for _, s := range o.Steps {
		if s.Status == StatusFailure {
			return s, true
		}
	}
	return StepResult{}, false
}

func aggregate(steps []StepResult) Status {
	status := StatusSuccess
	for _, s := range steps {
		switch s.Status {
		case StatusFailure:
			return StatusFailure
		case StatusSkip:
			status = StatusSkip
		}
	}
	return status
}

// failureReason prefers stderr, then stdout, then the bare exit code.
func failureReason(res runner.Result) error {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return errors.New(msg)
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("exit status %d", res.ExitCode)
}
