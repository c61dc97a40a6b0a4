package keys

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseKey parses names like "ctrl+l", "alt+x", "enter" or "ctrl+space".
func ParseKey(s string) (Key, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Key{}, fmt.Errorf("empty key")
	}
	parts := strings.Split(s, "+")
	name := parts[len(parts)-1]
	if name == "" && len(parts) > 1 {
		// "ctrl++"
		name = "+"
		parts = parts[:len(parts)-1]
	}
	var k Key
	for _, m := range parts[:len(parts)-1] {
		switch m {
		case "ctrl":
			k.Mod |= ModCtrl
		case "alt", "meta":
			k.Mod |= ModAlt
		case "shift":
			k.Mod |= ModShift
		default:
			return Key{}, fmt.Errorf("unknown modifier %q in %q", m, s)
		}
	}
	if name == "space" {
		k.Code, k.Rune = CodeRune, ' '
		return k, nil
	}
	for code, n := range codeNames {
		if n == name && code != CodeUnknown {
			k.Code = code
			return k, nil
		}
	}
	r, size := utf8.DecodeRuneInString(name)
	if size != len(name) || r == utf8.RuneError {
		return Key{}, fmt.Errorf("unknown key %q", s)
	}
	k.Code, k.Rune = CodeRune, r
	return k, nil
}

// Bindings are the hotkeys of the wrapper and the chat overlay.
type Bindings struct {
	Chat   Key // opens the overlay from the shell
	Accept Key // leaves the overlay with the suggested command
	Toggle Key // expands or collapses the reasoning trace
	Cancel Key // leaves the overlay without a command
}

// DefaultBindings returns Ctrl+L to open and accept, Ctrl+R to toggle and
// Ctrl+C to cancel.
func DefaultBindings() Bindings {
	return Bindings{
		Chat:   Ctrl('l'),
		Accept: Ctrl('l'),
		Toggle: Ctrl('r'),
		Cancel: Ctrl('c'),
	}
}

// ParseBindings builds bindings from key names; empty names keep the
// defaults.
func ParseBindings(chat, accept, toggle, cancel string) (Bindings, error) {
	b := DefaultBindings()
	set := []struct {
		name string
		dst  *Key
	}{
		{chat, &b.Chat},
		{accept, &b.Accept},
		{toggle, &b.Toggle},
		{cancel, &b.Cancel},
	}
	for _, s := range set {
		if strings.TrimSpace(s.name) == "" {
			continue
		}
		k, err := ParseKey(s.name)
		if err != nil {
			return Bindings{}, err
		}
		*s.dst = k
	}
	if b.Accept == b.Toggle || b.Accept == b.Cancel || b.Toggle == b.Cancel {
		return Bindings{}, fmt.Errorf("overlay keys must differ: accept=%s toggle=%s cancel=%s", b.Accept, b.Toggle, b.Cancel)
	}
	return b, nil
}
