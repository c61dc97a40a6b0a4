//go:build !windows

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// watchResize calls apply with the new size on every SIGWINCH.
func watchResize(ctx context.Context, size func() (cols, rows int), apply func(cols, rows int)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				apply(size())
			}
		}
	}()
}
