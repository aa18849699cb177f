package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Fields(t *testing.T) {
	err := New(CodeUnknownOption, "error: unknown option '--bogus'")
	assert.Equal(t, 1, err.ExitCode)
	assert.Equal(t, "commander.unknownOption", err.Code)
	assert.EqualError(t, err, "error: unknown option '--bogus'")
	assert.Nil(t, errors.Unwrap(err))

	exitErr := NewWithExit(0, CodeHelpDisplayed, "(outputHelp)")
	assert.Equal(t, 0, exitErr.ExitCode)
}

func TestError_WrapCarriesCause(t *testing.T) {
	cause := NewInvalidArgument("'x' is not an integer.")
	err := Wrap(CodeInvalidArgument, "error: option '--port <n>' argument 'x' is invalid. 'x' is not an integer.", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, IsCode(err, CodeInvalidArgument))
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := New(CodeHelp, "(outputHelp)")
	assert.True(t, errors.Is(err, New(CodeHelp, "different message")))
	assert.False(t, errors.Is(err, New(CodeVersion, "")))
}

func TestIsCode(t *testing.T) {
	err := New(CodeConflictingOption, "conflict")
	assert.True(t, IsCode(err, CodeConflictingOption))
	assert.False(t, IsCode(err, CodeUnknownOption))
	assert.False(t, IsCode(errors.New("plain"), CodeConflictingOption))

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsCode(wrapped, CodeConflictingOption))
}

func TestFromError(t *testing.T) {
	err := New(CodeGeneric, "boom")
	require.NotNil(t, FromError(err))
	assert.Equal(t, CodeGeneric, FromError(err).Code)
	assert.Nil(t, FromError(errors.New("plain")))
}
