// Package llm talks to the language model behind the chat overlay.
//
// A round-trip is modelled as a finite, single-use sequence of events:
// zero or more reasoning fragments followed by exactly one reply or
// failure.
package llm

import (
	"context"
	"errors"
	"iter"
)

// Role is the author of a chat message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleAssistant {
		return "assistant"
	}
	return "user"
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Reply is the model's answer to one request. Command is empty when no
// command was suggested.
type Reply struct {
	Text      string
	Command   string
	Reasoning string
}

// HasCommand reports whether the reply suggests a command.
func (r Reply) HasCommand() bool { return r.Command != "" }

// EventKind tells which field of an Event is meaningful.
type EventKind int

const (
	EventReasoning EventKind = iota
	EventReply
	EventFailure
)

// Event is one item of a round-trip.
type Event struct {
	Kind     EventKind
	Fragment string
	Reply    Reply
	Err      error
}

// Reasoning returns a reasoning fragment event.
func Reasoning(fragment string) Event { return Event{Kind: EventReasoning, Fragment: fragment} }

// Done returns the terminal reply event.
func Done(r Reply) Event { return Event{Kind: EventReply, Reply: r} }

// Failed returns the terminal failure event.
func Failed(err error) Event { return Event{Kind: EventFailure, Err: err} }

var (
	// ErrNoReply is reported when a stream ends without a terminal event.
	ErrNoReply = errors.New("model stream ended without a reply")
	// ErrMissingAPIKey is reported when no API key is configured.
	ErrMissingAPIKey = errors.New("no API key configured: set llm.api_key or OPENAI_API_KEY")
)

// Client performs chat round-trips. The returned sequence does the work
// lazily as it is ranged over and may be consumed only once.
type Client interface {
	Chat(ctx context.Context, history []Message, input string) iter.Seq[Event]
}

// Collect drains a round-trip. Reasoning fragments go to onReasoning when
// it is non-nil. A sequence without a terminal event yields ErrNoReply.
func Collect(events iter.Seq[Event], onReasoning func(string)) (Reply, error) {
	for ev := range events {
		switch ev.Kind {
		case EventReasoning:
			if onReasoning != nil {
				onReasoning(ev.Fragment)
			}
		case EventReply:
			return ev.Reply, nil
		case EventFailure:
			return Reply{}, ev.Err
		}
	}
	return Reply{}, ErrNoReply
}
