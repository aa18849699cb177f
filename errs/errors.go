// Package errs defines the structured errors surfaced by commandant.
//
// Every user-visible failure carries a stable string code, an exit code and
// a message. Errors raised while coercing a value additionally wrap the
// coercion error so callers can unwrap the original cause.
package errs

import (
	"errors"
)

// Stable error codes. The code string is part of the public contract and is
// never localized or rewritten.
const (
	CodeInvalidArgument             = "commander.invalidArgument"
	CodeMissingArgument             = "commander.missingArgument"
	CodeExcessArguments             = "commander.excessArguments"
	CodeUnknownOption               = "commander.unknownOption"
	CodeUnknownCommand              = "commander.unknownCommand"
	CodeOptionMissingArgument       = "commander.optionMissingArgument"
	CodeMissingMandatoryOptionValue = "commander.missingMandatoryOptionValue"
	CodeConflictingOption           = "commander.conflictingOption"
	CodeHelp                        = "commander.help"
	CodeHelpDisplayed               = "commander.helpDisplayed"
	CodeVersion                     = "commander.version"
	CodeExecuteSubCommandAsync      = "commander.executeSubCommandAsync"
	CodeGeneric                     = "commander.error"
)

// Error is the structured error value used for all parse, validation and
// control-flow failures.
type Error struct {
	// ExitCode is the process exit code associated with the failure.
	ExitCode int
	// Code is the stable machine-readable code, e.g. "commander.unknownOption".
	Code    string
	message string
	cause   error
}

// New creates an Error with exit code 1.
func New(code, message string) *Error {
	return &Error{ExitCode: 1, Code: code, message: message}
}

// NewWithExit creates an Error with an explicit exit code.
func NewWithExit(exitCode int, code, message string) *Error {
	return &Error{ExitCode: exitCode, Code: code, message: message}
}

// Wrap creates an Error carrying the originating cause, reachable through
// errors.Unwrap.
func Wrap(code, message string, cause error) *Error {
	return &Error{ExitCode: 1, Code: code, message: message, cause: cause}
}

// NewInvalidArgument creates the error a value coercer reports when it
// rejects its input. The parser prefixes the message with the flag or
// argument context before surfacing it.
func NewInvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code. This makes
// errors.Is(err, errs.New(errs.CodeHelp, "")) match any help error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// IsCode reports whether err is (or wraps) an *Error carrying the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// FromError returns the *Error wrapped in err, or nil.
func FromError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
