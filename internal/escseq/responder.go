// Package escseq answers terminal queries on behalf of a program running
// in a pseudo-terminal.
//
// The Responder scans the program's output for escape sequences. Device
// status and attribute queries are removed from the stream and answered;
// everything else passes through untouched. Sequences may be split across
// any number of chunks.
package escseq

import (
	"bytes"

	"github.com/charmbracelet/x/ansi"
)

const (
	esc = 0x1b
	bel = 0x07

	// a sequence held longer than this is released as it arrives until
	// its terminator
	maxPending = 1 << 16
)

// Query sequences the responder answers and the fixed replies it sends.
const (
	QueryCursorPosition = ansi.RequestCursorPositionReport // ESC[6n
	QueryStatus         = "\x1b[5n"
	QueryAttributes     = ansi.RequestPrimaryDeviceAttributes // ESC[c

	ReplyStatusOK   = "\x1b[0n"
	ReplyAttributes = "\x1b[?1;0c"
)

// Locator reports the real terminal's cursor position, 0-based.
type Locator interface {
	CursorPosition() (row, col int, err error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func() (row, col int, err error)

func (f LocatorFunc) CursorPosition() (int, int, error) { return f() }

// Responder filters one logical output stream. It is not safe for
// concurrent use; the relay owns it.
type Responder struct {
	locate  Locator
	pending []byte

	// inside is the introducer of a released oversized sequence still
	// waiting for its terminator; strEsc marks a string ending in ESC.
	inside byte
	strEsc bool

	// Flush, when set, receives the filtered bytes that precede a cursor
	// query before the locator is consulted, so the position reflects
	// them. The slice is not retained.
	Flush func(p []byte)
}

// New returns a responder that answers cursor queries from loc. A nil
// loc reports the home position.
func New(loc Locator) *Responder {
	return &Responder{locate: loc}
}

// Pending reports how many bytes are held waiting for a terminator.
func (r *Responder) Pending() int { return len(r.pending) }

// Process consumes chunk and returns the bytes to show on the terminal.
// Replies to recognized queries are passed to respond, in stream order,
// before Process returns.
func (r *Responder) Process(chunk []byte, respond func(reply []byte)) []byte {
	buf := chunk
	if len(r.pending) > 0 {
		buf = append(r.pending, chunk...)
		r.pending = nil
	}

	var out []byte
	i := 0
	if r.inside != 0 {
		n := r.resume(buf)
		if n < 0 {
			return append(out, buf...)
		}
		out = append(out, buf[:n]...)
		i = n
	}
	for i < len(buf) {
		next := bytes.IndexByte(buf[i:], esc)
		if next < 0 {
			out = append(out, buf[i:]...)
			break
		}
		out = append(out, buf[i:i+next]...)
		i += next

		end, ok := scan(buf, i)
		if !ok {
			if len(buf)-i > maxPending {
				r.inside = buf[i+1]
				r.resume(buf[i+2:])
				out = append(out, buf[i:]...)
				break
			}
			r.pending = append([]byte(nil), buf[i:]...)
			break
		}
		seq := buf[i:end]
		i = end

		switch string(seq) {
		case QueryCursorPosition:
			if r.Flush != nil && len(out) > 0 {
				r.Flush(out)
				out = nil
			}
			respond([]byte(r.cursorReport()))
		case QueryStatus:
			respond([]byte(ReplyStatusOK))
		case QueryAttributes:
			respond([]byte(ReplyAttributes))
		default:
			out = append(out, seq...)
		}
	}
	return out
}

// Finish ends the stream. An unterminated sequence still pending is
// discarded; the number of bytes dropped is returned.
func (r *Responder) Finish() int {
	n := len(r.pending)
	r.pending = nil
	r.inside, r.strEsc = 0, false
	return n
}

// resume scans the rest of a released sequence with the same terminator
// rules as scan. It returns the index just past the terminator, or -1 when
// buf ends first.
func (r *Responder) resume(buf []byte) int {
	for j, c := range buf {
		switch r.inside {
		case '[':
			if c >= 0x40 && c <= 0x7e {
				r.inside = 0
				return j + 1
			}
		case ']', 'P', 'X', '^', '_':
			if r.strEsc {
				r.strEsc = false
				if c == '\\' {
					r.inside = 0
					return j + 1
				}
			}
			switch {
			case c == bel && r.inside == ']':
				r.inside = 0
				return j + 1
			case c == esc:
				r.strEsc = true
			}
		default:
			if c >= 0x20 && c <= 0x2f {
				continue
			}
			r.inside = 0
			if c >= 0x30 && c <= 0x7e {
				return j + 1
			}
			return j
		}
	}
	return -1
}

func (r *Responder) cursorReport() string {
	row, col := 0, 0
	if r.locate != nil {
		if y, x, err := r.locate.CursorPosition(); err == nil {
			row, col = y, x
		}
	}
	return ansi.CursorPositionReport(row+1, col+1)
}

// scan finds the end of the escape sequence starting at buf[i]. ok is
// false when the sequence is not terminated within buf.
func scan(buf []byte, i int) (end int, ok bool) {
	if i+1 >= len(buf) {
		return 0, false
	}
	switch buf[i+1] {
	case '[':
		for j := i + 2; j < len(buf); j++ {
			if buf[j] >= 0x40 && buf[j] <= 0x7e {
				return j + 1, true
			}
		}
		return 0, false
	case ']':
		for j := i + 2; j < len(buf); j++ {
			if buf[j] == bel {
				return j + 1, true
			}
			if buf[j] == esc {
				if j+1 >= len(buf) {
					return 0, false
				}
				if buf[j+1] == '\\' {
					return j + 2, true
				}
			}
		}
		return 0, false
	case 'P', 'X', '^', '_':
		for j := i + 2; j+1 < len(buf); j++ {
			if buf[j] == esc && buf[j+1] == '\\' {
				return j + 2, true
			}
		}
		return 0, false
	default:
		j := i + 1
		for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x2f {
			j++
		}
		if j >= len(buf) {
			return 0, false
		}
		if buf[j] >= 0x30 && buf[j] <= 0x7e {
			return j + 1, true
		}
		// malformed: the lone ESC passes through, the rest is plain data
		return i + 1, true
	}
}
