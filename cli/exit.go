package cli

import (
	"errors"
	"fmt"

	"swarmgen/core"
)

// ExitError carries a process exit code alongside the error message.
// RunE handlers return these; main maps them onto os.Exit.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// wrapExit wraps an error with an exit code.
func wrapExit(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// usageError returns an ExitError with the usage exit code.
func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: core.ExitCodeUsage, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error. Plain errors map to
// the generic fatal code; nil maps to success.
func GetExitCode(err error) int {
	if err == nil {
		return core.ExitCodeSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return core.ExitCodeError
}
