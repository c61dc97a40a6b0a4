// Package shell runs the user's interactive shell inside a pseudo-terminal
// and relays its output to the real terminal.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/xpty"

	"shellm/internal/escseq"
)

// SpawnError reports that the pseudo-terminal could not be allocated or
// the shell could not be started.
type SpawnError struct {
	Op    string // "allocate" or "start"
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	if e.Op == "allocate" {
		return fmt.Sprintf("allocate pseudo-terminal: %v", e.Err)
	}
	return fmt.Sprintf("start shell %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Options configure a session.
type Options struct {
	Path string   // shell executable
	Args []string // shell arguments
	Dir  string   // working directory; empty means the current one
	Env  []string // added to the inherited environment
	Cols int
	Rows int

	Logger *clog.Logger
}

// Session is one shell process attached to a pseudo-terminal. The
// session's Writer is the only way bytes enter the terminal.
type Session struct {
	pty    xpty.Pty
	cmd    *exec.Cmd
	writer *Writer
	log    *clog.Logger

	done      chan struct{}
	exitErr   error
	closeOnce sync.Once
}

// Start allocates a pseudo-terminal of the given size and starts the
// shell in it.
func Start(opts Options) (*Session, error) {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 || rows <= 0 {
		cols, rows = 80, 24
	}
	log := opts.Logger
	if log == nil {
		log = clog.New(io.Discard)
	}

	p, err := xpty.NewPty(cols, rows)
	if err != nil {
		return nil, &SpawnError{Op: "allocate", Shell: opts.Path, Err: err}
	}

	cmd := exec.Command(opts.Path, opts.Args...)
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			cmd.Dir = wd
		}
	}
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.SysProcAttr = sysProcAttr()

	if err := p.Start(cmd); err != nil {
		_ = p.Close()
		return nil, &SpawnError{Op: "start", Shell: opts.Path, Err: err}
	}
	// the child holds the slave now; without our copy closed, reads on
	// the master never see the child go away
	if up, ok := p.(*xpty.UnixPty); ok {
		_ = up.Slave().Close()
	}

	s := &Session{
		pty:    p,
		cmd:    cmd,
		writer: NewWriter(p),
		log:    log,
		done:   make(chan struct{}),
	}
	go s.wait()
	log.Debug("shell started", "path", opts.Path, "pid", cmd.Process.Pid, "cols", cols, "rows", rows)
	return s, nil
}

func (s *Session) wait() {
	err := xpty.WaitProcess(context.Background(), s.cmd)
	s.exitErr = err
	s.log.Debug("shell exited", "err", err)
	close(s.done)
}

// Writer returns the serialized input side of the terminal.
func (s *Session) Writer() *Writer { return s.writer }

// Write sends p to the shell's input.
func (s *Session) Write(p []byte) (int, error) { return s.writer.Write(p) }

// Resize propagates a new terminal size to the shell.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid terminal size %dx%d", cols, rows)
	}
	return s.pty.Resize(cols, rows)
}

// Done is closed once the shell process has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Exited reports, without blocking, whether the shell has exited.
func (s *Session) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Err returns the shell's exit error once Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.exitErr
	default:
		return nil
	}
}

// Close releases the pseudo-terminal, which hangs up the shell.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.pty.Close()
		if errors.Is(err, os.ErrClosed) {
			err = nil
		}
	})
	return err
}

// Relay starts copying the shell's output to out through resp. Replies to
// terminal queries are written back to the shell. The returned channel is
// closed when the output side reaches EOF or fails.
func (s *Session) Relay(out io.Writer, resp *escseq.Responder) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("relay stopped", "panic", r)
			}
		}()
		s.relay(out, resp)
	}()
	return done
}

func (s *Session) relay(out io.Writer, resp *escseq.Responder) {
	respond := func(reply []byte) {
		if _, err := s.writer.Write(reply); err != nil {
			s.log.Warn("write query reply", "err", err)
		}
	}
	buf := make([]byte, 32*1024)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			if filtered := resp.Process(buf[:n], respond); len(filtered) > 0 {
				if _, werr := out.Write(filtered); werr != nil {
					s.log.Warn("write terminal", "err", werr)
				}
			}
		}
		if err != nil {
			if dropped := resp.Finish(); dropped > 0 {
				s.log.Debug("dropped unterminated escape sequence", "bytes", dropped)
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, syscall.EIO) {
				s.log.Debug("relay read", "err", err)
			}
			return
		}
	}
}
