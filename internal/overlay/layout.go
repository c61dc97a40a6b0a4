package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"shellm/internal/geometry"
	"shellm/internal/i18n"
	"shellm/internal/keys"
	"shellm/internal/llm"
	"shellm/internal/ui"
)

const tabWidth = 4

// line is one logical output line. text is plain; style is applied only
// when writing so measurements never see escape codes.
type line struct {
	text  string
	style lipgloss.Style
}

// view is everything the reply block shows.
type view struct {
	reasoning string
	answer    string
	command   string
	failure   string
	notice    string
	expanded  bool
	answered  bool
}

// block is a laid out reply.
type block struct {
	lines     []line
	rows      int
	truncated bool
	collapsed bool // expanded was requested but did not fit
}

type layouter struct {
	metric geometry.Metric
	cat    i18n.Catalog
	styles ui.Styles
	toggle keys.Key
}

// layout arranges v in cols columns using at most budget rows:
// reasoning hint or expanded block, answer lines, candidate line, notice.
func (l layouter) layout(v view, cols, budget int) block {
	if budget < 1 {
		budget = 1
	}
	var answer []line
	switch {
	case v.failure != "":
		answer = l.prefixed(l.cat.T(i18n.ErrorPrefix), v.failure, l.styles.Error)
	case v.answered:
		answer = l.prefixed(l.cat.T(i18n.PromptAssistant), v.answer, l.styles.Assistant)
	}
	var tail []line
	if v.command != "" {
		tail = append(tail, line{l.cat.T(i18n.PromptCandidate) + clean(v.command), l.styles.Candidate})
	}
	if v.notice != "" {
		tail = append(tail, line{clean(v.notice), l.styles.Hint})
	}
	answerRows := l.rows(answer, cols)
	tailRows := l.rows(tail, cols)

	var b block
	reasoning := strings.TrimSpace(v.reasoning)
	switch {
	case reasoning == "" || v.failure != "" || !v.answered:
	case v.expanded:
		head := []line{{l.cat.T(i18n.ReasoningStart), l.styles.Reasoning}}
		foot := []line{{l.cat.T(i18n.ReasoningEnd), l.styles.Reasoning}}
		content := l.split(reasoning, l.styles.Reasoning)
		reserved := l.rows(head, cols) + l.rows(foot, cols) + answerRows + tailRows
		if reserved+l.rows(content, cols) <= budget {
			b.lines = concat(head, content, foot)
			break
		}
		notice := []line{{l.cat.T(i18n.ReasoningTruncated), l.styles.Hint}}
		avail := budget - reserved - l.rows(notice, cols)
		if avail <= 0 {
			b.lines = l.hint()
			b.collapsed = true
			break
		}
		kept, _ := l.metric.FitTail(texts(content), cols, avail)
		b.lines = concat(head, restyle(kept, l.styles.Reasoning), notice, foot)
		b.truncated = true
	default:
		b.lines = l.hint()
	}

	if l.rows(b.lines, cols)+answerRows+tailRows > budget {
		// Even the hint does not fit: give the rows to the answer.
		b.lines = nil
	}
	if answerRows+tailRows > budget {
		for len(tail) > 0 && l.rows(tail, cols) >= budget {
			tail = tail[:len(tail)-1]
		}
		avail := budget - l.rows(tail, cols)
		if len(answer) > 0 {
			kept, _ := l.metric.FitTail(texts(answer), cols, avail)
			answer = restyle(kept, answer[0].style)
		}
		b.truncated = true
	}
	b.lines = concat(b.lines, answer, tail)
	b.rows = l.rows(b.lines, cols)
	return b
}

func (l layouter) hint() []line {
	return []line{{fmt.Sprintf(l.cat.T(i18n.HintToggleReasoning), l.toggle), l.styles.Hint}}
}

// prefixed splits text into lines and puts prefix before the first one.
func (l layouter) prefixed(prefix, text string, style lipgloss.Style) []line {
	lines := l.split(strings.TrimSpace(text), style)
	if len(lines) == 0 {
		return []line{{prefix, style}}
	}
	lines[0].text = prefix + lines[0].text
	return lines
}

func (l layouter) split(text string, style lipgloss.Style) []line {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]line, 0, len(parts))
	for _, p := range parts {
		out = append(out, line{clean(p), style})
	}
	return out
}

func (l layouter) rows(lines []line, cols int) int {
	n := 0
	for _, ln := range lines {
		n += l.metric.LineRows(ln.text, cols)
	}
	return n
}

// clean removes escape sequences and control characters from model output
// so that measured and printed widths agree.
func clean(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func concat(groups ...[]line) []line {
	var out []line
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func texts(lines []line) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.text
	}
	return out
}

func restyle(ss []string, style lipgloss.Style) []line {
	out := make([]line, len(ss))
	for i, t := range ss {
		out[i] = line{t, style}
	}
	return out
}

// replyView builds the view of a finished round-trip.
func replyView(r llm.Reply, expanded bool) view {
	return view{reasoning: r.Reasoning, answer: r.Text, command: r.Command, expanded: expanded, answered: true}
}
