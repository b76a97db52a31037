package deploy

import "github.com/quickdeploy/quickdeploy/internal/errs"

// Re-export errors for convenience.
var (
	ErrDeployFailed = errs.ErrDeployFailed
	ErrBeforeHook   = errs.ErrBeforeHook
	ErrAfterHook    = errs.ErrAfterHook
)
