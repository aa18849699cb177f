// Package parse holds the token stream consumed by the option parser and
// the lexer used to split raw command lines.
package parse

import (
	"github.com/ef-ds/deque/v2"
)

// State is the stream of argv tokens a single command parses. Tokens are
// consumed from the front; splitting a short-flag cluster requeues the
// remainder at the front so it is reprocessed before anything else.
type State struct {
	tokens deque.Deque[string]
}

// NewState creates a State over a copy of args.
func NewState(args []string) *State {
	s := &State{}
	for _, arg := range args {
		s.tokens.PushBack(arg)
	}
	return s
}

// Next pops the front token. The second return is false when the stream is
// exhausted.
func (s *State) Next() (string, bool) {
	return s.tokens.PopFront()
}

// Peek returns the front token without consuming it.
func (s *State) Peek() (string, bool) {
	return s.tokens.Front()
}

// Requeue pushes a token to the front of the stream so it is the next token
// returned by Next.
func (s *State) Requeue(token string) {
	s.tokens.PushFront(token)
}

// Drain consumes and returns all remaining tokens in order.
func (s *State) Drain() []string {
	remaining := make([]string, 0, s.tokens.Len())
	for {
		token, ok := s.tokens.PopFront()
		if !ok {
			return remaining
		}
		remaining = append(remaining, token)
	}
}

// Len returns the number of unconsumed tokens.
func (s *State) Len() int {
	return s.tokens.Len()
}
