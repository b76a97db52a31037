package errs

import "errors"

var (
	ErrEmptyCommand = errors.New("command has no arguments")
	ErrDeployFailed = errors.New("deployment failed")
	ErrBeforeHook   = errors.New("before-deploy script failed")
	ErrAfterHook    = errors.New("after-deploy script failed")
	ErrUnknownKey   = errors.New("unknown config key")
)

// Reported reports whether err has already been shown to the user by the
// deploy output, so the CLI should not print it again.
func Reported(err error) bool {
	return errors.Is(err, ErrDeployFailed) || errors.Is(err, ErrBeforeHook) || errors.Is(err, ErrAfterHook)
}
