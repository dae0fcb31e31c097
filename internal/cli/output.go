package cli

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/codec"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // storage or runtime failure
	ExitCommandError = 2 // bad arguments or invalid event data
)

// ExitError carries the process exit code for a failed command.
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

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify picks the exit code for an error returned by the calendar:
// storage problems are failures, anything else is bad input.
func classify(message string, err error) error {
	code := ExitCommandError
	if errors.Is(err, codec.ErrStorageUnavailable) || errors.Is(err, calendar.ErrNoPath) {
		code = ExitFailure
	}
	return WrapExitError(code, message, err)
}
