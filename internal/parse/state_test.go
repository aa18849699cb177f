package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_ConsumeInOrder(t *testing.T) {
	state := NewState([]string{"a", "b", "c"})
	assert.Equal(t, 3, state.Len())

	token, ok := state.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", token)

	peeked, ok := state.Peek()
	assert.True(t, ok)
	assert.Equal(t, "b", peeked)
	assert.Equal(t, 2, state.Len())
}

func TestState_RequeueComesFirst(t *testing.T) {
	state := NewState([]string{"-b", "tail"})
	state.Next()
	state.Requeue("-x")

	token, ok := state.Next()
	assert.True(t, ok)
	assert.Equal(t, "-x", token)

	token, _ = state.Next()
	assert.Equal(t, "tail", token)
}

func TestState_Drain(t *testing.T) {
	state := NewState([]string{"a", "b", "c"})
	state.Next()
	assert.Equal(t, []string{"b", "c"}, state.Drain())
	assert.Equal(t, 0, state.Len())

	_, ok := state.Next()
	assert.False(t, ok)
	assert.Empty(t, state.Drain())
}

func TestSplit(t *testing.T) {
	args, err := Split(`--name "Ada Lovelace" -v`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"--name", "Ada Lovelace", "-v"}, args)
}
