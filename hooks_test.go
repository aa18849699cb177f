package commandant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_ExecutionOrder(t *testing.T) {
	program, _ := testProgram("prog")
	var order []string
	record := func(label string) HookFunc {
		return func(hooked, event *Command) error {
			order = append(order, label)
			return nil
		}
	}

	sub := program.Command("sub")
	program.Hook(PreSubcommand, record("root:preSubcommand"))
	program.Hook(PreAction, record("root:preAction1"))
	program.Hook(PreAction, record("root:preAction2"))
	program.Hook(PostAction, record("root:postAction"))
	sub.Hook(PreAction, record("sub:preAction"))
	sub.Hook(PostAction, record("sub:postAction1"))
	sub.Hook(PostAction, record("sub:postAction2"))
	sub.Action(func(cmd *Command, args []any) error {
		order = append(order, "action")
		return nil
	})

	require.NoError(t, program.Parse([]string{"node", "script", "sub"}))
	assert.Equal(t, []string{
		"root:preSubcommand",
		"root:preAction1",
		"root:preAction2",
		"sub:preAction",
		"action",
		"sub:postAction2",
		"sub:postAction1",
		"root:postAction",
	}, order)
}

func TestHooks_PreSubcommandReceivesSubcommand(t *testing.T) {
	program, _ := testProgram("prog")
	var hookedName, eventName string
	program.Hook(PreSubcommand, func(hooked, event *Command) error {
		hookedName = hooked.Name()
		eventName = event.Name()
		return nil
	})
	program.Command("sub").Action(func(cmd *Command, args []any) error { return nil })

	require.NoError(t, program.Parse([]string{"node", "script", "sub"}))
	assert.Equal(t, "prog", hookedName)
	assert.Equal(t, "sub", eventName)
}

func TestHooks_ErrorShortCircuitsAction(t *testing.T) {
	program, _ := testProgram("prog")
	actionRan := false
	hookErr := errors.New("hook failed")
	program.Hook(PreAction, func(hooked, event *Command) error { return hookErr })
	program.Action(func(cmd *Command, args []any) error {
		actionRan = true
		return nil
	})

	err := program.Parse([]string{"node", "script"})
	require.ErrorIs(t, err, hookErr)
	assert.False(t, actionRan)
}

func TestHooks_UnknownEventPanics(t *testing.T) {
	program, _ := testProgram("prog")
	require.Panics(t, func() {
		program.Hook(HookEvent("beforeEverything"), func(hooked, event *Command) error { return nil })
	})
}

func TestHooks_DeferredActionChainsSequentially(t *testing.T) {
	program, _ := testProgram("prog")
	var order []string
	completion := NewCompletion()

	program.Hook(PreAction, func(hooked, event *Command) error {
		order = append(order, "preAction")
		return nil
	})
	program.Action(func(cmd *Command, args []any) error {
		order = append(order, "action:start")
		go func() {
			time.Sleep(10 * time.Millisecond)
			order = append(order, "action:complete")
			completion.Complete(nil)
		}()
		return Defer(completion)
	})
	program.Hook(PostAction, func(hooked, event *Command) error {
		order = append(order, "postAction")
		return nil
	})

	result := program.ParseAsync([]string{"node", "script"})
	require.NoError(t, result.Wait())
	assert.Equal(t, []string{"preAction", "action:start", "action:complete", "postAction"}, order)
}

func TestHooks_DeferredErrorPropagates(t *testing.T) {
	program, _ := testProgram("prog")
	completion := NewCompletion()
	failure := errors.New("async failure")
	postRan := false

	program.Action(func(cmd *Command, args []any) error {
		go completion.Complete(failure)
		return Defer(completion)
	})
	program.Hook(PostAction, func(hooked, event *Command) error {
		postRan = true
		return nil
	})

	result := program.ParseAsync([]string{"node", "script"})
	require.ErrorIs(t, result.Wait(), failure)
	assert.False(t, postRan)
}

func TestHooks_ParseReturnsBeforeDeferredCompletes(t *testing.T) {
	program, _ := testProgram("prog")
	completion := NewCompletion()
	program.Action(func(cmd *Command, args []any) error {
		return Defer(completion)
	})

	result := program.ParseAsync([]string{"node", "script"})
	assert.False(t, result.Completed())
	completion.Complete(nil)
	require.NoError(t, result.Wait())
	assert.True(t, result.Completed())
}

func TestParseResult_ErrBeforeCompletion(t *testing.T) {
	result := newPendingResult()
	assert.Nil(t, result.Err())
	result.complete(errors.New("done"))
	assert.EqualError(t, result.Err(), "done")

	// Completing twice keeps the first outcome.
	result.complete(errors.New("again"))
	assert.EqualError(t, result.Err(), "done")
}
