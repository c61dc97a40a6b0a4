package keys

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// Decoder turns chunks of terminal input into events. Multi-byte
// characters, escape sequences and bracketed pastes may span chunks. A
// lone ESC at the end of a chunk is reported as the Esc key.
type Decoder struct {
	// ExpectReport reports whether a cursor position request is
	// outstanding. Without one, "ESC [ row ; col R" is a key (it collides
	// with modified F3).
	ExpectReport func() bool

	pending  []byte
	pasting  bool
	pasteBuf []byte
}

// Feed decodes chunk and returns the complete events it finished.
func (d *Decoder) Feed(chunk []byte) []Event {
	buf := chunk
	if len(d.pending) > 0 {
		buf = append(d.pending, chunk...)
		d.pending = nil
	}

	var evs []Event
	i := 0
	for i < len(buf) {
		if d.pasting {
			n, done := d.feedPaste(buf[i:])
			i += n
			if !done {
				break
			}
			text := string(d.pasteBuf)
			evs = append(evs, Event{
				Kind:  KindPaste,
				Paste: text,
				Raw:   []byte(pasteStart + text + pasteEnd),
			})
			d.pasting = false
			d.pasteBuf = nil
			continue
		}

		ev, n, ok := d.decodeOne(buf[i:])
		if !ok {
			d.pending = append([]byte(nil), buf[i:]...)
			break
		}
		if string(buf[i:i+n]) == pasteStart {
			d.pasting = true
			i += n
			continue
		}
		ev.Raw = append([]byte(nil), buf[i:i+n]...)
		evs = append(evs, ev)
		i += n
	}
	return evs
}

// feedPaste consumes paste content up to and including the end marker.
// A partial end marker at the end of b is kept pending.
func (d *Decoder) feedPaste(b []byte) (consumed int, done bool) {
	if idx := bytes.Index(b, []byte(pasteEnd)); idx >= 0 {
		d.pasteBuf = append(d.pasteBuf, b[:idx]...)
		return idx + len(pasteEnd), true
	}
	keep := 0
	for k := min(len(pasteEnd)-1, len(b)); k > 0; k-- {
		if bytes.HasPrefix([]byte(pasteEnd), b[len(b)-k:]) {
			keep = k
			break
		}
	}
	d.pasteBuf = append(d.pasteBuf, b[:len(b)-keep]...)
	if keep > 0 {
		d.pending = append([]byte(nil), b[len(b)-keep:]...)
	}
	return len(b), false
}

// decodeOne decodes the event at the start of b. ok is false when b holds
// only the beginning of an event.
func (d *Decoder) decodeOne(b []byte) (ev Event, n int, ok bool) {
	c := b[0]
	switch {
	case c == 0x1b:
		return d.decodeEscape(b)
	case c == '\r':
		return keyEvent(Key{Code: CodeEnter}), 1, true
	case c == 0x7f || c == 0x08:
		return keyEvent(Key{Code: CodeBackspace}), 1, true
	case c == '\t':
		return keyEvent(Key{Code: CodeTab}), 1, true
	case c == 0x00:
		return keyEvent(Key{Code: CodeRune, Rune: ' ', Mod: ModCtrl}), 1, true
	case c < 0x1b:
		return keyEvent(Ctrl(rune('a' + c - 1))), 1, true
	case c < 0x20:
		return keyEvent(Ctrl(rune(c + 0x40))), 1, true
	case c < utf8.RuneSelf:
		return keyEvent(Key{Code: CodeRune, Rune: rune(c)}), 1, true
	}
	if !utf8.FullRune(b) {
		return Event{}, 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size == 1 {
		return keyEvent(Key{Code: CodeUnknown}), 1, true
	}
	return keyEvent(Key{Code: CodeRune, Rune: r}), size, true
}

func (d *Decoder) decodeEscape(b []byte) (Event, int, bool) {
	if len(b) == 1 {
		return keyEvent(Key{Code: CodeEsc}), 1, true
	}
	switch b[1] {
	case '[':
		return d.decodeCSI(b)
	case 'O':
		if len(b) < 3 {
			return Event{}, 0, false
		}
		k := Key{Code: CodeUnknown}
		switch b[2] {
		case 'A':
			k.Code = CodeUp
		case 'B':
			k.Code = CodeDown
		case 'C':
			k.Code = CodeRight
		case 'D':
			k.Code = CodeLeft
		case 'H':
			k.Code = CodeHome
		case 'F':
			k.Code = CodeEnd
		}
		return keyEvent(k), 3, true
	case 0x1b:
		return keyEvent(Key{Code: CodeEsc, Mod: ModAlt}), 2, true
	}
	inner, n, ok := d.decodeOne(b[1:])
	if !ok {
		return Event{}, 0, false
	}
	inner.Key.Mod |= ModAlt
	return inner, n + 1, true
}

func (d *Decoder) decodeCSI(b []byte) (Event, int, bool) {
	end := -1
	for j := 2; j < len(b); j++ {
		if b[j] >= 0x40 && b[j] <= 0x7e {
			end = j
			break
		}
	}
	if end < 0 {
		return Event{}, 0, false
	}
	params := string(b[2:end])
	final := b[end]
	n := end + 1

	if final == 'R' && d.ExpectReport != nil && d.ExpectReport() {
		if row, col, ok := parsePair(params); ok {
			return Event{Kind: KindCursorReport, Pos: Position{Row: row, Col: col}}, n, true
		}
	}

	k := Key{Code: CodeUnknown}
	fields := strings.Split(params, ";")
	if len(fields) == 2 {
		if p, err := strconv.Atoi(fields[1]); err == nil && p > 1 {
			k.Mod = modFromParam(p)
		}
	}
	switch final {
	case 'A':
		k.Code = CodeUp
	case 'B':
		k.Code = CodeDown
	case 'C':
		k.Code = CodeRight
	case 'D':
		k.Code = CodeLeft
	case 'H':
		k.Code = CodeHome
	case 'F':
		k.Code = CodeEnd
	case 'Z':
		k.Code, k.Mod = CodeTab, ModShift
	case '~':
		switch fields[0] {
		case "1", "7":
			k.Code = CodeHome
		case "4", "8":
			k.Code = CodeEnd
		case "2":
			k.Code = CodeInsert
		case "3":
			k.Code = CodeDelete
		case "5":
			k.Code = CodePgUp
		case "6":
			k.Code = CodePgDown
		}
	}
	if k.Code == CodeUnknown {
		k.Mod = 0
	}
	return keyEvent(k), n, true
}

func modFromParam(p int) Mod {
	p--
	var m Mod
	if p&1 != 0 {
		m |= ModShift
	}
	if p&2 != 0 {
		m |= ModAlt
	}
	if p&4 != 0 {
		m |= ModCtrl
	}
	return m
}

func parsePair(s string) (int, int, bool) {
	a, b, ok := strings.Cut(s, ";")
	if !ok {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(a)
	col, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || row < 1 || col < 1 {
		return 0, 0, false
	}
	return row, col, true
}

func keyEvent(k Key) Event { return Event{Kind: KindKey, Key: k} }
