package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/quickdeploy/quickdeploy/internal/errs"
)

// Spec describes a single external command invocation.
type Spec struct {
	Args    []string
	Env     map[string]string
	Dir     string
	Capture bool
}

// String returns the command line for display.
func (s Spec) String() string {
	return strings.Join(s.Args, " ")
}

// Result holds the exit code and any captured output of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output returns stdout and stderr joined, trimmed of surrounding whitespace.
func (r Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(spec Spec) (Result, error)
}

// ExecRunner runs real processes. When a Spec does not request capture, output
// goes to Stdout and Stderr, which default to the process's own streams.
type ExecRunner struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string
}

// Run starts the command and waits for it to exit. A non-zero exit is reported
// through Result.ExitCode with a nil error; the error is only set when the
// process could not be run at all.
func (r *ExecRunner) Run(spec Spec) (Result, error) {
	if len(spec.Args) == 0 {
		return Result{ExitCode: -1}, errs.ErrEmptyCommand
	}

	cmd := exec.Command(spec.Args[0], spec.Args[1:]...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	cmd.Env = MergeEnv(r.environ(), spec.Env)

	var stdout, stderr bytes.Buffer
	if spec.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = writerOr(r.Stdout, os.Stdout)
		cmd.Stderr = writerOr(r.Stderr, os.Stderr)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	if errors.Is(err, exec.ErrNotFound) {
		res.ExitCode = 127
	}
	return res, fmt.Errorf("failed to run %s: %w", spec.Args[0], err)
}

func (r *ExecRunner) environ() []string {
	if r.Environ != nil {
		return r.Environ()
	}
	return os.Environ()
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

// MergeEnv returns base with overrides applied. Overridden keys keep their
// position in base; new keys are appended in sorted order.
func MergeEnv(base []string, overrides map[string]string) []string {
	result := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, key+"="+v)
			continue
		}
		result = append(result, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, k+"="+overrides[k])
	}
	return result
}
