// Package keys decodes raw terminal input into key presses, pastes and
// cursor reports, and translates keys back into the bytes a terminal
// would send for them.
package keys

import "strings"

// Code identifies a non-character key. CodeRune keys carry the character
// in Key.Rune.
type Code int

const (
	CodeRune Code = iota
	CodeEnter
	CodeBackspace
	CodeTab
	CodeEsc
	CodeUp
	CodeDown
	CodeRight
	CodeLeft
	CodeHome
	CodeEnd
	CodeInsert
	CodeDelete
	CodePgUp
	CodePgDown
	CodeUnknown
)

var codeNames = map[Code]string{
	CodeEnter:     "enter",
	CodeBackspace: "backspace",
	CodeTab:       "tab",
	CodeEsc:       "esc",
	CodeUp:        "up",
	CodeDown:      "down",
	CodeRight:     "right",
	CodeLeft:      "left",
	CodeHome:      "home",
	CodeEnd:       "end",
	CodeInsert:    "insert",
	CodeDelete:    "delete",
	CodePgUp:      "pgup",
	CodePgDown:    "pgdown",
	CodeUnknown:   "unknown",
}

// Mod is a set of modifier keys.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
)

// Key is one key press. Keys are comparable.
type Key struct {
	Code Code
	Rune rune
	Mod  Mod
}

// Ctrl returns the key for Ctrl plus a letter.
func Ctrl(r rune) Key { return Key{Code: CodeRune, Rune: r, Mod: ModCtrl} }

// String renders the key in the form accepted by ParseKey, e.g. "ctrl+l".
func (k Key) String() string {
	var sb strings.Builder
	if k.Mod&ModCtrl != 0 {
		sb.WriteString("ctrl+")
	}
	if k.Mod&ModAlt != 0 {
		sb.WriteString("alt+")
	}
	if k.Mod&ModShift != 0 {
		sb.WriteString("shift+")
	}
	if k.Code == CodeRune {
		if k.Rune == ' ' {
			sb.WriteString("space")
		} else {
			sb.WriteRune(k.Rune)
		}
		return sb.String()
	}
	sb.WriteString(codeNames[k.Code])
	return sb.String()
}

// Position is a 1-based cursor position reported by the terminal.
type Position struct {
	Row int
	Col int
}

// Kind tells which field of an Event is set.
type Kind int

const (
	KindKey Kind = iota
	KindPaste
	KindCursorReport
)

// Event is one decoded input item. Raw always holds the exact bytes the
// terminal sent.
type Event struct {
	Kind  Kind
	Key   Key
	Paste string
	Pos   Position
	Raw   []byte
}
