package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickdeploy/quickdeploy/internal/errs"
	"github.com/quickdeploy/quickdeploy/internal/runner"
)

const (
	Before = "before"
	After  = "after"
)

// Path returns the hook script location for kind inside repoDir.
func Path(repoDir, kind string) string {
	return filepath.Join(repoDir, "scripts", "deploy_"+kind)
}

// Exists reports whether the hook script for kind is present.
func Exists(repoDir, kind string) bool {
	_, err := os.Stat(Path(repoDir, kind))
	return err == nil
}

// Run executes a deploy hook script in repoDir with environment variables set.
// Returns the combined stdout+stderr output and any error.
func Run(r runner.Runner, kind, scriptPath, repoDir, message string) (string, error) {
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return "", nil
	}

	res, err := r.Run(runner.Spec{
		Args: []string{scriptPath},
		Dir:  repoDir,
		Env: map[string]string{
			"DEPLOY_DIR":     repoDir,
			"DEPLOY_MESSAGE": message,
		},
		Capture: true,
	})
	output := res.Stdout + res.Stderr

	sentinel := errs.ErrBeforeHook
	if kind == After {
		sentinel = errs.ErrAfterHook
	}
	if err != nil {
		return output, fmt.Errorf("%w: %v", sentinel, err)
	}
	if res.ExitCode != 0 {
		return output, fmt.Errorf("%w: %s returned a non-zero exit code.\n%s", sentinel, scriptPath, output)
	}

	return output, nil
}
