// Package geometry measures how text lands on a fixed-width terminal grid.
//
// The default metric is a fixed heuristic: ASCII control characters take no
// columns, other ASCII takes one, and everything else takes two. It is
// deliberately coarse and stable. Precise switches to East Asian width
// tables for terminals that render narrow non-ASCII text as one column.
package geometry

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Metric maps runes to terminal columns. The zero Metric is Heuristic.
type Metric struct {
	rune func(r rune) int
}

func (m Metric) runeWidth(r rune) int {
	if m.rune == nil {
		return heuristicWidth(r)
	}
	return m.rune(r)
}

// Heuristic is the fixed-width estimator used by the overlay by default.
var Heuristic = Metric{rune: heuristicWidth}

// Precise uses Unicode East Asian width classification.
var Precise = Metric{rune: preciseWidth}

func heuristicWidth(r rune) int {
	switch {
	case r < 0x20 || r == 0x7f:
		return 0
	case r < 0x80:
		return 1
	default:
		return 2
	}
}

// narrow ambiguous-width characters regardless of the host locale
var preciseCond = &runewidth.Condition{StrictEmojiNeutral: true}

func preciseWidth(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 0
	}
	return preciseCond.RuneWidth(r)
}

// Width returns the display width of s.
func (m Metric) Width(s string) int {
	w := 0
	for _, r := range s {
		w += m.runeWidth(r)
	}
	return w
}

// WrapRows returns how many rows s occupies when wrapped at cols.
// A zero-width string occupies zero rows; cols <= 0 counts as a single row.
func (m Metric) WrapRows(s string, cols int) int {
	if cols <= 0 {
		return 1
	}
	w := m.Width(s)
	return (w + cols - 1) / cols
}

// LineRows is WrapRows for a line that is printed and terminated: even an
// empty line moves the cursor down one row.
func (m Metric) LineRows(s string, cols int) int {
	return max(1, m.WrapRows(s, cols))
}

// TruncateTail returns the longest suffix of s whose width does not exceed
// maxWidth. Characters are dropped whole from the front.
func (m Metric) TruncateTail(s string, maxWidth int) string {
	if maxWidth < 0 {
		maxWidth = 0
	}
	w := 0
	cut := len(s)
	for cut > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:cut])
		rw := m.runeWidth(r)
		if w+rw > maxWidth {
			break
		}
		w += rw
		cut -= size
	}
	return s[cut:]
}

// FitTail keeps the most recent lines that fit into maxRows rows at cols
// columns. Older lines are dropped whole; when even the newest line is too
// tall on its own, its tail is kept. truncated reports whether anything was
// dropped.
func (m Metric) FitTail(lines []string, cols, maxRows int) (kept []string, truncated bool) {
	if maxRows <= 0 {
		return nil, len(lines) > 0
	}
	rows := 0
	start := len(lines)
	for start > 0 {
		r := m.LineRows(lines[start-1], cols)
		if rows+r > maxRows {
			break
		}
		rows += r
		start--
	}
	if start == len(lines) && len(lines) > 0 {
		last := lines[len(lines)-1]
		return []string{m.TruncateTail(last, maxRows*cols)}, true
	}
	return lines[start:], start > 0
}

// Flatten joins a multi-line string into one line, replacing each line
// break (CRLF, CR or LF) with a single space.
func Flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// DisplayWidth is Heuristic.Width.
func DisplayWidth(s string) int { return Heuristic.Width(s) }

// WrapRows is Heuristic.WrapRows.
func WrapRows(s string, cols int) int { return Heuristic.WrapRows(s, cols) }

// TruncateTail is Heuristic.TruncateTail.
func TruncateTail(s string, maxWidth int) string { return Heuristic.TruncateTail(s, maxWidth) }
