package cli

import (
	"errors"

	"github.com/mesh-intelligence/dw/pkg/types"
)

// Exit codes. Each failure category has its own code.
const (
	exitSuccess         = 0
	exitUserError       = 1
	exitSysError        = 2
	exitConfigNotFound  = 3
	exitConfigParse     = 4
	exitPathNotFound    = 5
	exitNotAnImage      = 6
	exitEmptyCycle      = 7
	exitEmptyDirectory  = 8
	exitIndexOutOfRange = 9
	exitSchedulerFailed = 10
	exitApplyFailed     = 11
	exitUnsupported     = 12
)

// Result is the outcome of one command.
type Result struct {
	Success  bool
	ExitCode int
	Message  string
}

// ResultFor converts a command error into a Result.
func ResultFor(err error) Result {
	if err == nil {
		return Result{Success: true, ExitCode: exitSuccess}
	}
	return Result{ExitCode: exitCodeFor(err), Message: err.Error()}
}

// errorCodes is checked in order; the first match wins.
var errorCodes = []struct {
	err  error
	code int
}{
	{types.ErrConfigNotFound, exitConfigNotFound},
	{types.ErrConfigParse, exitConfigParse},
	{types.ErrInvalidPreset, exitUserError},
	{types.ErrInvalidInterval, exitUserError},
	{types.ErrPathNotFound, exitPathNotFound},
	{types.ErrNotAnImage, exitNotAnImage},
	{types.ErrEmptyCycle, exitEmptyCycle},
	{types.ErrEmptyDirectory, exitEmptyDirectory},
	{types.ErrIndexOutOfRange, exitIndexOutOfRange},
	{types.ErrUnsupportedPlatform, exitUnsupported},
	{types.ErrUnsupportedEnvironment, exitUnsupported},
	{types.ErrSchedulerCommandFailed, exitSchedulerFailed},
	{types.ErrApplyCommandFailed, exitApplyFailed},
}

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		return exitUserError
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return exitSysError
}

// usageError is a bad command line: unknown command, wrong argument count,
// or an invalid flag value.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(err error) error {
	return &usageError{err: err}
}
