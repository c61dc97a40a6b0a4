//go:build !windows

package termio

import (
	"testing"

	"github.com/charmbracelet/x/term"
	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRawRestores(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	require.True(t, IsTerminal(tty))
	before, err := term.GetState(tty.Fd())
	require.NoError(t, err)

	restore, err := MakeRaw(tty)
	require.NoError(t, err)
	require.NoError(t, restore())

	after, err := term.GetState(tty.Fd())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSizeFollowsPty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	require.NoError(t, pty.Setsize(ptmx, &pty.Winsize{Rows: 33, Cols: 101}))
	cols, rows := Size(tty)
	assert.Equal(t, 101, cols)
	assert.Equal(t, 33, rows)
}
