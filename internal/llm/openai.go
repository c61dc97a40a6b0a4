package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOptions configure an OpenAI-compatible chat endpoint.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	Temperature  float32
	JSONMode     bool          // request response_format json_object
	Timeout      time.Duration // whole request, including the stream
	MaxRetries   int

	Logger *clog.Logger
	// HTTPClient replaces the retrying transport.
	HTTPClient openai.HTTPDoer
}

// OpenAI streams chat completions from an OpenAI-compatible API. Reasoning
// arrives either as reasoning_content deltas or as <think> sections of the
// content.
type OpenAI struct {
	opts   OpenAIOptions
	client *openai.Client
	log    *clog.Logger
}

// NewOpenAI builds a client. A missing API key is reported by Chat.
func NewOpenAI(o OpenAIOptions) *OpenAI {
	log := o.Logger
	if log == nil {
		log = clog.New(io.Discard)
	}
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	if o.HTTPClient != nil {
		cfg.HTTPClient = o.HTTPClient
	} else {
		rc := retryablehttp.NewClient()
		rc.RetryMax = o.MaxRetries
		rc.HTTPClient.Timeout = o.Timeout
		rc.Logger = log.StandardLog()
		cfg.HTTPClient = rc.StandardClient()
	}
	return &OpenAI{opts: o, client: openai.NewClientWithConfig(cfg), log: log}
}

// Model returns the configured model name.
func (c *OpenAI) Model() string { return c.opts.Model }

func (c *OpenAI) messages(history []Message, input string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if c.opts.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.opts.SystemPrompt})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})
}

// Chat implements Client.
func (c *OpenAI) Chat(ctx context.Context, history []Message, input string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		id := uuid.NewString()
		log := c.log.With("request", id)
		if strings.TrimSpace(c.opts.APIKey) == "" {
			yield(Failed(ErrMissingAPIKey))
			return
		}

		req := openai.ChatCompletionRequest{
			Model:       c.opts.Model,
			Messages:    c.messages(history, input),
			Temperature: c.opts.Temperature,
			Stream:      true,
		}
		if c.opts.JSONMode {
			req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
		}

		start := time.Now()
		log.Debug("chat request", "model", req.Model, "messages", len(req.Messages))
		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			log.Warn("chat request failed", "err", err)
			yield(Failed(fmt.Errorf("chat request: %w", err)))
			return
		}
		defer stream.Close()

		var content, reasoning strings.Builder
		var split thinkSplitter
		emit := func(fragment, text string) bool {
			content.WriteString(text)
			if fragment == "" {
				return true
			}
			reasoning.WriteString(fragment)
			return yield(Reasoning(fragment))
		}
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Warn("chat stream failed", "err", err)
				yield(Failed(fmt.Errorf("chat stream: %w", err)))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta
			r, text := split.feed(delta.Content)
			if !emit(delta.ReasoningContent+r, text) {
				return
			}
		}
		if r, text := split.flush(); !emit(r, text) {
			return
		}

		reply := ParseReply(content.String(), reasoning.String())
		log.Debug("chat reply", "elapsed", time.Since(start), "command", reply.HasCommand(), "reasoning", len(reply.Reasoning))
		yield(Done(reply))
	}
}
