package deploy

import (
	"errors"
	"strings"
	"testing"

	"github.com/quickdeploy/quickdeploy/internal/runner"
	"github.com/quickdeploy/quickdeploy/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner returns a canned result per git subcommand and records calls.
type scriptedRunner struct {
	results map[string]runner.Result
	errs    map[string]error
	calls   []runner.Spec
}

func (m *scriptedRunner) Run(spec runner.Spec) (runner.Result, error) {
	m.calls = append(m.calls, spec)
	key := ""
	if len(spec.Args) > 1 {
		key = spec.Args[1]
	}
	return m.results[key], m.errs[key]
}

func (m *scriptedRunner) subcommands() []string {
	var out []string
	for _, c := range m.calls {
		out = append(out, strings.Join(c.Args[1:2], ""))
	}
	return out
}

func TestStepsBuildsPipeline(t *testing.T) {
	steps := Steps(&vcs.Git{}, Options{
		Dir:     "/repo",
		Message: "feat: hello",
		Remote:  "origin",
		Branch:  "main",
		Env:     map[string]string{"LC_ALL": "C"},
	})

	require.Len(t, steps, 3)
	assert.Equal(t, StepStage, steps[0].Name)
	assert.Equal(t, []string{"git", "add", "."}, steps[0].Spec.Args)
	assert.Nil(t, steps[0].Skip)

	assert.Equal(t, StepCommit, steps[1].Name)
	assert.Equal(t, []string{"git", "commit", "-m", "feat: hello"}, steps[1].Spec.Args)
	assert.NotNil(t, steps[1].Skip)

	assert.Equal(t, StepPush, steps[2].Name)
	assert.Equal(t, []string{"git", "push", "origin", "main"}, steps[2].Spec.Args)
	assert.Nil(t, steps[2].Skip)

	for _, s := range steps {
		assert.Equal(t, "/repo", s.Spec.Dir)
		assert.True(t, s.Spec.Capture)
		assert.Equal(t, map[string]string{"GIT_PAGER": "", "LC_ALL": "C"}, s.Spec.Env)
	}
}

func TestStepsStreamKeepsCommitCaptured(t *testing.T) {
	steps := Steps(&vcs.Git{}, Options{Message: "m", Stream: true})

	assert.False(t, steps[0].Spec.Capture)
	assert.True(t, steps[1].Spec.Capture)
	assert.False(t, steps[2].Spec.Capture)
}

func TestStepsConfigEnvCanOverridePager(t *testing.T) {
	steps := Steps(&vcs.Git{}, Options{Message: "m", Env: map[string]string{"GIT_PAGER": "cat"}})
	assert.Equal(t, "cat", steps[0].Spec.Env["GIT_PAGER"])
}

func TestStepsCustomSkip(t *testing.T) {
	steps := Steps(&vcs.Git{}, Options{Message: "m", Skip: OutputContains("无文件要提交")})

	assert.True(t, steps[1].Skip(runner.Result{ExitCode: 1, Stdout: "无文件要提交"}))
	assert.False(t, steps[1].Skip(runner.Result{ExitCode: 1, Stdout: "nothing to commit"}))
}

func TestSequencerAllSucceed(t *testing.T) {
	r := &scriptedRunner{}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.True(t, outcome.OK())
	assert.Equal(t, []string{"add", "commit", "push"}, r.subcommands())
	require.Len(t, outcome.Steps, 3)
	for _, s := range outcome.Steps {
		assert.Equal(t, StatusSuccess, s.Status)
		assert.NoError(t, s.Err)
	}
}

func TestSequencerNothingToCommitStillPushes(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"commit": {ExitCode: 1, Stdout: "nothing to commit, working tree clean\n"},
	}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, []string{"add", "commit", "push"}, r.subcommands())
	assert.Equal(t, StatusSkip, outcome.Status)
	assert.True(t, outcome.OK())
	assert.Equal(t, StatusSkip, outcome.Steps[1].Status)
	assert.NoError(t, outcome.Steps[1].Err)
	assert.Equal(t, StatusSuccess, outcome.Steps[2].Status)
}

func TestSequencerStageFailureHalts(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"add": {ExitCode: 128, Stderr: "fatal: not a git repository (or any of the parent directories): .git\n"},
	}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, []string{"add"}, r.subcommands())
	assert.Equal(t, StatusFailure, outcome.Status)
	require.Len(t, outcome.Steps, 1)
	assert.EqualError(t, outcome.Steps[0].Err, "fatal: not a git repository (or any of the parent directories): .git")

	failed, ok := outcome.Failed()
	assert.True(t, ok)
	assert.Equal(t, StepStage, failed.Name)
}

func TestSequencerStageNothingToCommitIsStillFailure(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"add": {ExitCode: 1, Stdout: "nothing to commit"},
	}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, StatusFailure, outcome.Status)
	assert.Equal(t, []string{"add"}, r.subcommands())
}

func TestSequencerCommitFailureHalts(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"commit": {ExitCode: 128, Stderr: "Author identity unknown\n"},
	}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, []string{"add", "commit"}, r.subcommands())
	assert.Equal(t, StatusFailure, outcome.Status)
	assert.EqualError(t, outcome.Steps[1].Err, "Author identity unknown")
}

func TestSequencerPushFailure(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"push": {ExitCode: 1, Stderr: "! [rejected] main -> main (fetch first)\n"},
	}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, StatusFailure, outcome.Status)
	require.Len(t, outcome.Steps, 3)
	assert.Contains(t, outcome.Steps[2].Err.Error(), "rejected")
}

func TestSequencerRunnerErrorIsFailure(t *testing.T) {
	startErr := errors.New("failed to run git: chdir /missing: no such file or directory")
	r := &scriptedRunner{errs: map[string]error{"add": startErr}}
	seq := &Sequencer{Runner: r}

	outcome := seq.Run(Steps(&vcs.Git{}, Options{Dir: "/missing", Message: "m"}))

	assert.Equal(t, StatusFailure, outcome.Status)
	assert.Equal(t, []string{"add"}, r.subcommands())
	assert.Same(t, startErr, outcome.Steps[0].Err)
}

func TestSequencerOnStep(t *testing.T) {
	r := &scriptedRunner{results: map[string]runner.Result{
		"commit": {ExitCode: 1, Stdout: "nothing to commit"},
	}}
	var seen []Status
	seq := &Sequencer{Runner: r, OnStep: func(step Step, res StepResult) {
		seen = append(seen, res.Status)
	}}

	seq.Run(Steps(&vcs.Git{}, Options{Message: "m"}))

	assert.Equal(t, []Status{StatusSuccess, StatusSkip, StatusSuccess}, seen)
}
