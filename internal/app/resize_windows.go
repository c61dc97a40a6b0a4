//go:build windows

package app

import (
	"context"
	"time"
)

// watchResize polls the console size; Windows has no SIGWINCH.
func watchResize(ctx context.Context, size func() (cols, rows int), apply func(cols, rows int)) {
	go func() {
		t := time.NewTicker(250 * time.Millisecond)
		defer t.Stop()
		lastCols, lastRows := size()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				cols, rows := size()
				if cols != lastCols || rows != lastRows {
					lastCols, lastRows = cols, rows
					apply(cols, rows)
				}
			}
		}
	}()
}
