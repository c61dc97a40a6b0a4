// Package termio owns the real terminal: raw mode, bracketed paste, size
// queries, and the single serialized sink that everything drawing on the
// screen goes through.
package termio

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
)

// File is the part of *os.File the terminal helpers need.
type File interface {
	Fd() uintptr
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f File) bool { return term.IsTerminal(f.Fd()) }

// MakeRaw switches f into raw mode and returns the func restoring the
// previous mode. Callers defer it.
func MakeRaw(f File) (restore func() error, err error) {
	fd := f.Fd()
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}

// Size returns the terminal's columns and rows, or 80x24 when they cannot
// be determined.
func Size(f File) (cols, rows int) {
	w, h, err := term.GetSize(f.Fd())
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// BracketedPaste enables bracketed paste on w and returns the func that
// disables it again.
func BracketedPaste(w io.Writer) (disable func()) {
	_, _ = io.WriteString(w, ansi.SetBracketedPasteMode)
	return func() { _, _ = io.WriteString(w, ansi.ResetBracketedPasteMode) }
}
