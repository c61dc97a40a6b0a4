package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	clog "github.com/charmbracelet/log"

	"shellm/internal/keys"
	"shellm/internal/termio"
)

// overlayFunc runs one chat overlay and reports the accepted command.
type overlayFunc func(ctx context.Context, kit *chatKit) (command string, ok bool, err error)

// loop forwards terminal input to the shell until the shell exits. The
// chat hotkey hands the terminal to the overlay instead.
type loop struct {
	events  <-chan keys.Event
	shell   io.Writer
	screen  *termio.Screen
	exited  <-chan struct{}
	kit     *atomic.Pointer[chatKit]
	overlay overlayFunc
	log     *clog.Logger
}

func (l *loop) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.exited:
			return nil
		case ev, ok := <-l.events:
			if !ok {
				l.log.Debug("terminal input closed")
				return nil
			}
			if err := l.handle(ctx, ev); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}
}

func (l *loop) handle(ctx context.Context, ev keys.Event) error {
	kit := l.kit.Load()
	if ev.Kind == keys.KindKey && ev.Key == kit.bindings.Chat {
		return l.chat(ctx, kit)
	}
	raw := ev.Raw
	if len(raw) == 0 && ev.Kind == keys.KindKey {
		raw = keys.Encode(ev.Key)
	}
	if len(raw) == 0 {
		return nil
	}
	if _, err := l.shell.Write(raw); err != nil {
		l.log.Warn("forward input", "err", err)
	}
	return nil
}

// chat runs the overlay, then injects the result: a carriage return to
// get a fresh prompt line, and on accept the command itself, left for the
// user to confirm.
func (l *loop) chat(ctx context.Context, kit *chatKit) error {
	command, ok, err := l.runOverlay(ctx, kit)
	if err != nil {
		return err
	}

	inject := []byte{'\r'}
	if ok {
		inject = append(inject, command...)
	}
	if _, werr := l.shell.Write(inject); werr != nil {
		l.log.Warn("inject command", "err", werr)
	}
	return nil
}

// runOverlay parks relay output and enables bracketed paste for the
// overlay. Both are undone on every return, panics included.
func (l *loop) runOverlay(ctx context.Context, kit *chatKit) (string, bool, error) {
	l.screen.Hold()
	disable := termio.BracketedPaste(l.screen.Direct())
	defer func() {
		if !l.screen.PasteMode() {
			disable()
		}
		if dropped, rerr := l.screen.Release(); rerr != nil {
			l.log.Warn("replay shell output", "err", rerr)
		} else if dropped > 0 {
			l.log.Warn("shell output dropped while chatting", "bytes", dropped)
		}
	}()
	return l.overlay(ctx, kit)
}
