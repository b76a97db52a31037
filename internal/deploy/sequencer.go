package deploy

import (
	"maps"

	"github.com/quickdeploy/quickdeploy/internal/runner"
	"github.com/quickdeploy/quickdeploy/internal/vcs"
)

const (
	StepStage  = "add"
	StepCommit = "commit"
	StepPush   = "push"
)

// Options configure the stage/commit/push pipeline.
type Options struct {
	Dir     string
	Message string
	Remote  string
	Branch  string
	// Env is merged over the pager override for every step.
	Env map[string]string
	// Stream sends stage and push output straight to the terminal.
	Stream bool
	// Skip overrides the commit skip predicate.
	Skip SkipFunc
}

// Steps builds the fixed pipeline: stage everything, commit, push.
func Steps(git *vcs.Git, opts Options) []Step {
	skip := opts.Skip
	if skip == nil {
		skip = NothingToCommit
	}

	stage := git.StageAll(opts.Dir)
	commit := git.Commit(opts.Dir, opts.Message)
	push := git.Push(opts.Dir, opts.Remote, opts.Branch)

	for _, spec := range []*runner.Spec{&stage, &commit, &push} {
		maps.Copy(spec.Env, opts.Env)
	}
	// Commit output is always needed to recognise a benign skip.
	stage.Capture = !opts.Stream
	push.Capture = !opts.Stream

	return []Step{
		{Name: StepStage, Spec: stage},
		{Name: StepCommit, Spec: commit, Skip: skip},
		{Name: StepPush, Spec: push},
	}
}

// StepFunc is called after each attempted step.
type StepFunc func(step Step, res StepResult)

// Sequencer runs steps in order, stopping at the first failure.
type Sequencer struct {
	Runner runner.Runner
	// OnStep, when set, observes every attempted step.
	OnStep StepFunc
}

// Run executes steps until one fails. Skipped steps do not stop the pipeline.
func (s *Sequencer) Run(steps []Step) Outcome {
	var results []StepResult

	for _, step := range steps {
		res, err := s.Runner.Run(step.Spec)

		sr := StepResult{Name: step.Name, Result: res}
		if err != nil {
			sr.Status = StatusFailure
			sr.Err = err
		} else {
			sr.Status = Classify(res, step.Skip)
			if sr.Status == StatusFailure {
				sr.Err = failureReason(res)
			}
		}

		results = append(results, sr)
		if s.OnStep != nil {
			s.OnStep(step, sr)
		}
		if sr.Status == StatusFailure {
			break
		}
	}

	return Outcome{Steps: results, Status: aggregate(results)}
}
