package commandant

import (
	"errors"
	"sync"

	"github.com/mlorenz/commandant/internal/util"
)

// ParseResult is the union of a finished parse and one still waiting on a
// deferred callback. A result obtained from ParseAsync must be waited on;
// one obtained internally may already be complete.
type ParseResult struct {
	done chan struct{}
	once sync.Once
	mu   sync.Mutex
	err  error
}

func newPendingResult() *ParseResult {
	return &ParseResult{done: make(chan struct{})}
}

func resolvedResult(err error) *ParseResult {
	r := newPendingResult()
	r.complete(err)
	return r
}

func (r *ParseResult) complete(err error) {
	r.once.Do(func() {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		close(r.done)
	})
}

// Completed reports whether the parse chain has finished.
func (r *ParseResult) Completed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the parse chain finishes.
func (r *ParseResult) Done() <-chan struct{} {
	return r.done
}

// Err returns the chain error once complete, nil before completion.
func (r *ParseResult) Err() error {
	if !r.Completed() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the parse chain finishes and returns its error.
func (r *ParseResult) Wait() error {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completion is the handle a hook or action hands back (wrapped by Defer)
// when its work finishes after the callback returns.
type Completion struct {
	r *ParseResult
}

// NewCompletion creates an unresolved Completion.
func NewCompletion() *Completion {
	return &Completion{r: newPendingResult()}
}

// Complete resolves the completion. Only the first call has an effect.
func (c *Completion) Complete(err error) {
	c.r.complete(err)
}

// Wait blocks until the completion resolves and returns its error.
func (c *Completion) Wait() error {
	return c.r.Wait()
}

// Defer wraps a Completion so a hook or action can report that it finishes
// later. The dispatcher suspends the remaining chain until the completion
// resolves; nothing after the suspension point runs concurrently with it.
func Defer(c *Completion) error {
	return &deferredCompletion{c: c}
}

type deferredCompletion struct {
	c *Completion
}

func (d *deferredCompletion) Error() string {
	return "deferred completion pending"
}

// callStep adapts an error-returning callback into a ParseResult, unwrapping
// a deferred completion into its pending result.
func callStep(fn func() error) *ParseResult {
	err := fn()
	var d *deferredCompletion
	if errors.As(err, &d) {
		return d.c.r
	}
	return resolvedResult(err)
}

// chainOrCall runs fn immediately when everything so far completed
// synchronously without error, and otherwise schedules it after prev
// resolves. A nil prev means nothing has run yet. Errors short-circuit the
// rest of the chain.
func chainOrCall(prev *ParseResult, fn func() *ParseResult) *ParseResult {
	if prev == nil {
		return fn()
	}
	if prev.Completed() {
		if prev.Err() != nil {
			return prev
		}
		return fn()
	}
	next := newPendingResult()
	go func() {
		if err := prev.Wait(); err != nil {
			next.complete(err)
			return
		}
		next.complete(fn().Wait())
	}()
	return next
}

// Hook registers fn for the given life-cycle event. Registering for an
// unknown event is an authoring error.
func (c *Command) Hook(event HookEvent, fn HookFunc) *Command {
	switch event {
	case PreSubcommand, PreAction, PostAction:
	default:
		panic("commandant: unknown hook event '" + string(event) + "'")
	}
	if c.lifeCycleHooks == nil {
		c.lifeCycleHooks = map[HookEvent][]HookFunc{}
	}
	c.lifeCycleHooks[event] = append(c.lifeCycleHooks[event], fn)
	return c
}

type hookDetail struct {
	hookedCommand *Command
	callback      HookFunc
}

func (c *Command) collectHooks(event HookEvent) []hookDetail {
	ancestors := c.getCommandAndAncestors()
	util.Reverse(ancestors) // root first
	var hooks []hookDetail
	for _, hooked := range ancestors {
		for _, callback := range hooked.lifeCycleHooks[event] {
			hooks = append(hooks, hookDetail{hookedCommand: hooked, callback: callback})
		}
	}
	if event == PostAction {
		util.Reverse(hooks)
	}
	return hooks
}

// chainOrCallHooks threads every registered hook for event through the
// sequential chain. eventCommand is the command the event concerns.
func (c *Command) chainOrCallHooks(prev *ParseResult, event HookEvent, eventCommand *Command) *ParseResult {
	result := prev
	for _, h := range c.collectHooks(event) {
		h := h
		result = chainOrCall(result, func() *ParseResult {
			return callStep(func() error {
				return h.callback(h.hookedCommand, eventCommand)
			})
		})
	}
	return result
}
