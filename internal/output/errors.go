package output

import (
	"errors"
	"fmt"
)

// Exit codes following sysexits.h convention where one exists
const (
	ExitOK           = 0  // Success
	ExitGeneral      = 1  // General error
	ExitUsage        = 2  // Invalid usage / bad arguments
	ExitAuth         = 3  // Authentication failure
	ExitNotFound     = 4  // Token or resource not found
	ExitConfigError  = 10 // Configuration error
	ExitNetworkError = 11 // Network connectivity error
	ExitStorage      = 74 // Credential storage I/O failure (EX_IOERR)
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
	Err      error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// Wrap creates a CLIError whose message is msg followed by the cause.
func Wrap(code int, msg string, err error) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  fmt.Sprintf("%s: %v", msg, err),
		Err:      err,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// ExitCode returns the exit code for err: the CLIError code when err wraps
// one, ExitOK for nil and ExitGeneral otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}

// ReportError prints err and, for a CLIError, its hint.
func ReportError(formatter Formatter, err error) {
	formatter.PrintError(err)

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		formatter.PrintHint(cliErr.Hint)
	}
}
