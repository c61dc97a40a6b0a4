// Package app wires the shell session, the terminal and the chat overlay
// into the interactive wrapper.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"shellm/internal/config"
	"shellm/internal/escseq"
	"shellm/internal/keys"
	"shellm/internal/overlay"
	"shellm/internal/shell"
	"shellm/internal/system"
	"shellm/internal/termio"
	"shellm/internal/ui"
)

// Options are the command-line overrides of the wrapper.
type Options struct {
	ConfigPath string
	Shell      string
	LogFile    string
	Debug      bool
}

// ErrNotTerminal is returned when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("shellm needs an interactive terminal")

// Start runs the wrapper on the process's terminal until the shell exits.
func Start(ctx context.Context, opts Options) error {
	cfg, cfgPath, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	closeLog, err := system.Configure(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()
	log := system.Logger

	stdin, stdout := os.Stdin, os.Stdout
	if !termio.IsTerminal(stdin) || !termio.IsTerminal(stdout) {
		return ErrNotTerminal
	}

	shellPath := firstNonEmpty(opts.Shell, cfg.Shell.Path, shell.DefaultShell())
	kit, err := newChatKit(ctx, cfg, shellPath, log)
	if err != nil {
		return err
	}
	var current atomic.Pointer[chatKit]
	current.Store(kit)

	cols, rows := termio.Size(stdout)
	sess, err := shell.Start(shell.Options{
		Path:   shellPath,
		Args:   cfg.Shell.Args,
		Env:    []string{"SHELLM_ACTIVE=1"},
		Cols:   cols,
		Rows:   rows,
		Logger: log,
	})
	if err != nil {
		return err
	}
	defer sess.Close()
	log.Info("session started", "shell", shellPath, "config", cfgPath, "cols", cols, "rows", rows)

	restore, err := termio.MakeRaw(stdin)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			log.Warn("restore terminal", "err", rerr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := keys.NewReader(stdin)
	screen := termio.NewScreen(stdout)
	locator := termio.NewLocator(screen.Direct(), reader)
	resp := escseq.New(locator)
	resp.Flush = func(p []byte) { _, _ = screen.Write(p) }
	relayDone := sess.Relay(screen, resp)

	size := func() (int, int) { return termio.Size(stdout) }
	watchResize(ctx, size, func(cols, rows int) {
		if err := sess.Resize(cols, rows); err != nil {
			log.Warn("resize", "err", err)
			return
		}
		log.Debug("resized", "cols", cols, "rows", rows)
	})

	if cfgPath != "" {
		err := config.Watch(ctx, cfgPath, log, func(c *config.Config) {
			next, err := newChatKit(ctx, c, shellPath, log)
			if err != nil {
				log.Warn("config reload rejected", "err", err)
				return
			}
			current.Store(next)
		})
		if err != nil {
			log.Warn("config hot reload disabled", "err", err)
		}
	}

	l := &loop{
		events: reader.Events(),
		shell:  sess.Writer(),
		screen: screen,
		exited: sess.Done(),
		kit:    &current,
		log:    log,
		overlay: func(ctx context.Context, kit *chatKit) (string, bool, error) {
			return overlay.New(overlay.Options{
				In:       reader.Events(),
				Out:      screen.Direct(),
				Locator:  locator,
				Size:     size,
				Client:   kit.client,
				Catalog:  kit.catalog,
				Bindings: kit.bindings,
				Metric:   kit.metric,
				Styles:   ui.DefaultStyles(),
				Logger:   log,
			}).Run(ctx)
		},
	}
	runErr := l.run(ctx)

	select {
	case <-relayDone:
	case <-time.After(500 * time.Millisecond):
	}
	logExit(sess)
	return runErr
}

func logExit(sess *shell.Session) {
	if !sess.Exited() {
		system.Logger.Info("terminal input ended; hanging up shell")
		return
	}
	err := sess.Err()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		system.Logger.Info("shell exited")
	case errors.As(err, &exitErr):
		system.Logger.Info("shell exited", "code", exitErr.ExitCode())
	default:
		system.Logger.Warn("shell wait", "err", fmt.Errorf("wait: %w", err))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
