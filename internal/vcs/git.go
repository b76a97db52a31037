package vcs

import (
	"fmt"
	"maps"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/runner"
)

// PagerEnv disables git's pager so captured output is never piped through less.
var PagerEnv = map[string]string{"GIT_PAGER": ""}

// Git builds and runs the git commands used by a deployment.
type Git struct {
	Runner runner.Runner
	// Binary overrides the git executable; defaults to "git".
	Binary string
}

func (g *Git) bin() string {
	if g.Binary != "" {
		return g.Binary
	}
	return "git"
}

func (g *Git) spec(dir string, args ...string) runner.Spec {
	return runner.Spec{
		Args:    append([]string{g.bin()}, args...),
		Env:     maps.Clone(PagerEnv),
		Dir:     dir,
		Capture: true,
	}
}

// StageAll stages every change in the working tree.
func (g *Git) StageAll(dir string) runner.Spec {
	return g.spec(dir, "add", ".")
}

// Commit records staged changes with the given message.
func (g *Git) Commit(dir, message string) runner.Spec {
	return g.spec(dir, "commit", "-m", message)
}

// Push sends local commits upstream. Branch is only used when remote is set.
func (g *Git) Push(dir, remote, branch string) runner.Spec {
	args := []string{"push"}
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}
	return g.spec(dir, args...)
}

// TopLevel returns the root directory of the repository containing dir.
func (g *Git) TopLevel(dir string) (string, error) {
	return g.query(dir, "rev-parse", "--show-toplevel")
}

// CurrentBranch returns the checked out branch name, or "HEAD" when detached.
func (g *Git) CurrentBranch(dir string) (string, error) {
	return g.query(dir, "rev-parse", "--abbrev-ref", "HEAD")
}

func (g *Git) query(dir string, args ...string) (string, error) {
	spec := g.spec(dir, args...)
	res, err := g.Runner.Run(spec)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s: %s", spec, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

