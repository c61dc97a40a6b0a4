package termio

import (
	"bytes"
	"io"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const maxBacklog = 1 << 20

// Screen serializes every write to the real terminal. The relay writes
// through Write; while the overlay holds the screen those writes are
// parked and replayed on Release. Overlay and control writes go through
// Direct and are never parked.
type Screen struct {
	mu      sync.Mutex
	out     io.Writer
	held    bool
	backlog bytes.Buffer
	dropped int
	paste   bool
}

var (
	pasteOn  = []byte(ansi.SetBracketedPasteMode)
	pasteOff = []byte(ansi.ResetBracketedPasteMode)
)

// NewScreen wraps the terminal output w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{out: w}
}

// Write implements io.Writer for relayed program output.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(p)
	if s.held {
		s.park(p)
		return len(p), nil
	}
	return s.out.Write(p)
}

func (s *Screen) park(p []byte) {
	s.backlog.Write(p)
	if over := s.backlog.Len() - maxBacklog; over > 0 {
		s.backlog.Next(over)
		s.dropped += over
	}
}

// track follows the bracketed paste mode requested by relayed output.
func (s *Screen) track(p []byte) {
	on, off := bytes.LastIndex(p, pasteOn), bytes.LastIndex(p, pasteOff)
	switch {
	case on > off:
		s.paste = true
	case off > on:
		s.paste = false
	}
}

// PasteMode reports whether the relayed program last enabled bracketed
// paste.
func (s *Screen) PasteMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paste
}

// Hold parks relay output until Release.
func (s *Screen) Hold() {
	s.mu.Lock()
	s.held = true
	s.mu.Unlock()
}

// Release writes the parked output and resumes direct relaying. It returns
// how many parked bytes were discarded for exceeding the backlog limit.
func (s *Screen) Release() (dropped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = false
	dropped, s.dropped = s.dropped, 0
	if s.backlog.Len() == 0 {
		return dropped, nil
	}
	_, err = s.out.Write(s.backlog.Bytes())
	s.backlog.Reset()
	return dropped, err
}

// Held reports whether relay output is currently parked.
func (s *Screen) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Direct returns a writer that bypasses parking.
func (s *Screen) Direct() io.Writer { return directWriter{s} }

type directWriter struct{ s *Screen }

func (d directWriter) Write(p []byte) (int, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.out.Write(p)
}
