package llm

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/invopop/jsonschema"
)

// Payload is the structured answer the system prompt asks for. Models
// disagree on the name of the text field, so several are accepted.
type Payload struct {
	Command     string `json:"command,omitempty" jsonschema:"description=A single shell command for the user's shell. Empty when no command applies."`
	Answer      string `json:"answer,omitempty" jsonschema:"description=Brief human-readable note about the command or the answer to the question."`
	Note        string `json:"note,omitempty" jsonschema:"-"`
	Explanation string `json:"explanation,omitempty" jsonschema:"-"`
	Message     string `json:"message,omitempty" jsonschema:"-"`
}

// ResponseSchema returns the JSON Schema of the payload, for prompts and
// structured output requests.
func ResponseSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	return r.Reflect(&Payload{})
}

// ResponseSchemaJSON renders ResponseSchema compactly.
func ResponseSchemaJSON() string {
	b, err := json.Marshal(ResponseSchema())
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParseReply turns the model's raw text into a reply. The text may be a
// bare JSON object or one wrapped in a ```json fence. When it is not a
// JSON object, the raw text is shown as the answer and no command is
// suggested.
func ParseReply(raw, reasoning string) Reply {
	raw = strings.TrimSpace(raw)
	reply := Reply{Text: raw, Reasoning: strings.TrimSpace(reasoning)}

	var p Payload
	if err := json.Unmarshal([]byte(unfence(raw)), &p); err != nil {
		return reply
	}
	reply.Command = SanitizeCommand(p.Command)
	for _, s := range []string{p.Answer, p.Note, p.Explanation, p.Message} {
		if strings.TrimSpace(s) != "" {
			reply.Text = strings.TrimSpace(s)
			break
		}
	}
	return reply
}

// unfence extracts the body of the first fenced code block, if any.
func unfence(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// drop the info string ("json")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return s
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// SanitizeCommand makes a suggested command safe to type into a shell:
// escape sequences and control characters are removed and line breaks
// become spaces, so nothing runs before the user presses Enter.
func SanitizeCommand(cmd string) string {
	cmd = ansi.Strip(cmd)
	cmd = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, cmd)
	return strings.TrimSpace(cmd)
}
