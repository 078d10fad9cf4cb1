package core

import (
	"errors"
	"fmt"
)

// Error codes for the failure kinds a run can hit. Per-job backend errors
// are reported but never change the process exit code; the rest are fatal.
const (
	ErrCodeNotFound       = "RULE_NOT_FOUND"
	ErrCodeExhaustedNames = "EXHAUSTED_NAMES"
	ErrCodeCollision      = "NAME_COLLISION"
	ErrCodeConnectivity   = "BACKEND_UNREACHABLE"
	ErrCodeBackend        = "BACKEND_ERROR"
)

// ToolError is the common shape for swarmgen's typed errors: a stable code
// for programmatic handling, a human-readable message, and an actionable
// hint printed to the user.
type ToolError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ToolError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// NotFoundError reports a rule name that exists in neither the built-in set
// nor the user override directory. Resolution never partially applies
// before returning one of these.
type NotFoundError struct {
	ToolError
	Rule string
}

// ErrRuleNotFound returns a NotFoundError naming the missing rule.
func ErrRuleNotFound(rule string) *NotFoundError {
	return &NotFoundError{
		ToolError: ToolError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("rule '%s' not found", rule),
			Action:  "Run 'swarmgen rules' to list available rule names",
		},
		Rule: rule,
	}
}

// ExhaustedNamesError reports that fixed-set naming ran out of names.
type ExhaustedNamesError struct {
	ToolError
	Supplied int
}

// ErrExhaustedNames returns an ExhaustedNamesError for a set of the given size.
func ErrExhaustedNames(supplied int) *ExhaustedNamesError {
	return &ExhaustedNamesError{
		ToolError: ToolError{
			Code:    ErrCodeExhaustedNames,
			Message: fmt.Sprintf("fixed name set exhausted after %d outputs", supplied),
			Action:  "Supply more names or switch to sequence naming",
		},
		Supplied: supplied,
	}
}

// CollisionError reports a target path that already exists when overwriting
// was not requested.
type CollisionError struct {
	ToolError
	Path string
}

// ErrCollision returns a CollisionError for the given path.
func ErrCollision(path string) *CollisionError {
	return &CollisionError{
		ToolError: ToolError{
			Code:    ErrCodeCollision,
			Message: fmt.Sprintf("target '%s' already exists", path),
			Action:  "Pass --force to overwrite, or pick a different name",
		},
		Path: path,
	}
}

// ConnectivityError reports an unreachable or timed-out backend. This kind
// is fatal: in batch mode it aborts all remaining units.
type ConnectivityError struct {
	ToolError
	URL string
	Err error
}

// ErrConnectivity wraps a transport-level failure against the given URL.
func ErrConnectivity(url string, err error) *ConnectivityError {
	return &ConnectivityError{
		ToolError: ToolError{
			Code:    ErrCodeConnectivity,
			Message: fmt.Sprintf("cannot reach backend at %s: %v", url, err),
			Action:  "Check that the server is running and --host/--port are correct",
		},
		URL: url,
		Err: err,
	}
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// BackendError reports a well-formed error response from the backend for a
// single job. Batch mode logs it and continues with the next unit.
type BackendError struct {
	ToolError
	Endpoint string
	Reason   string
}

// ErrBackend returns a BackendError for the given endpoint and server-side reason.
func ErrBackend(endpoint, reason string) *BackendError {
	return &BackendError{
		ToolError: ToolError{
			Code:    ErrCodeBackend,
			Message: fmt.Sprintf("%s failed: %s", endpoint, reason),
		},
		Endpoint: endpoint,
		Reason:   reason,
	}
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// IsBackend reports whether err is (or wraps) a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsFatal reports whether err should abort the whole run. Connectivity
// failures, unknown rules, and naming errors are fatal; per-job backend
// errors are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if IsBackend(err) {
		return false
	}
	return true
}
