package llm

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// thinkSplitter separates <think>…</think> sections of streamed content
// from the answer. Tags may be split across deltas.
type thinkSplitter struct {
	inside  bool
	pending string
}

func (t *thinkSplitter) feed(s string) (reasoning, content string) {
	s = t.pending + s
	t.pending = ""
	var rb, cb strings.Builder
	emit := func(part string) {
		if t.inside {
			rb.WriteString(part)
		} else {
			cb.WriteString(part)
		}
	}
	for s != "" {
		tag := thinkOpen
		if t.inside {
			tag = thinkClose
		}
		if i := strings.Index(s, tag); i >= 0 {
			emit(s[:i])
			s = s[i+len(tag):]
			t.inside = !t.inside
			continue
		}
		keep := partialTag(s, tag)
		emit(s[:len(s)-keep])
		t.pending = s[len(s)-keep:]
		break
	}
	return rb.String(), cb.String()
}

// flush releases text held back as a possible partial tag.
func (t *thinkSplitter) flush() (reasoning, content string) {
	s := t.pending
	t.pending = ""
	if t.inside {
		return s, ""
	}
	return "", s
}

// partialTag returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialTag(s, tag string) int {
	for k := min(len(tag)-1, len(s)); k > 0; k-- {
		if strings.HasPrefix(tag, s[len(s)-k:]) {
			return k
		}
	}
	return 0
}
