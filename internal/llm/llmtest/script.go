// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"iter"
	"sync"

	"shellm/internal/llm"
)

// Call records one Chat invocation.
type Call struct {
	History []llm.Message
	Input   string
}

// Script replays one scripted turn per Chat call, in order.
type Script struct {
	mu    sync.Mutex
	turns [][]llm.Event
	calls []Call
}

// New returns a script with the given turns.
func New(turns ...[]llm.Event) *Script {
	return &Script{turns: turns}
}

// Reply builds a turn that streams fragments and then replies.
func Reply(text, command string, fragments ...string) []llm.Event {
	evs := make([]llm.Event, 0, len(fragments)+1)
	reasoning := ""
	for _, f := range fragments {
		evs = append(evs, llm.Reasoning(f))
		reasoning += f
	}
	return append(evs, llm.Done(llm.Reply{Text: text, Command: command, Reasoning: reasoning}))
}

// Fail builds a turn that fails with err.
func Fail(err error) []llm.Event {
	return []llm.Event{llm.Failed(err)}
}

// Chat implements llm.Client.
func (s *Script) Chat(_ context.Context, history []llm.Message, input string) iter.Seq[llm.Event] {
	s.mu.Lock()
	s.calls = append(s.calls, Call{History: append([]llm.Message(nil), history...), Input: input})
	var turn []llm.Event
	if len(s.turns) > 0 {
		turn, s.turns = s.turns[0], s.turns[1:]
	} else {
		turn = Fail(errors.New("llmtest: no scripted turn left"))
	}
	s.mu.Unlock()

	used := false
	return func(yield func(llm.Event) bool) {
		if used {
			return
		}
		used = true
		for _, ev := range turn {
			if !yield(ev) {
				return
			}
		}
	}
}

// Calls returns the recorded invocations.
func (s *Script) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
