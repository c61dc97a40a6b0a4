package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 150 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes the
// new config to onChange. The directory is watched so editors that replace
// the file are noticed. A file that fails to parse is logged and skipped.
// Watching stops when ctx is done.
func Watch(ctx context.Context, path string, log *clog.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config: %w", err)
	}

	go func() {
		defer w.Close()
		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				timer.Reset(reloadDelay)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher", "err", err)
			case <-timer.C:
				cfg, _, err := Load(target)
				if err != nil {
					log.Warn("config reload failed; keeping previous settings", "err", err)
					continue
				}
				log.Info("config reloaded", "path", target)
				onChange(cfg)
			}
		}
	}()
	return nil
}
