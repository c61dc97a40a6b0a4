//go:build !windows

package shell

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellm/internal/escseq"
)

// syncBuffer collects relay output from the relay goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestStartMissingShell(t *testing.T) {
	_, err := Start(Options{Path: "/nonexistent/shellm-test-shell"})
	require.Error(t, err)
	var se *SpawnError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "start", se.Op)
	assert.Contains(t, err.Error(), "/nonexistent/shellm-test-shell")
}

func TestRelayAnswersQueries(t *testing.T) {
	requireSh(t)
	s, err := Start(Options{
		Path: "/bin/sh",
		Args: []string{"-c", `printf 'hello\033[5nworld'; sleep 0.3`},
	})
	require.NoError(t, err)
	defer s.Close()

	var out syncBuffer
	relayDone := s.Relay(&out, escseq.New(nil))
	waitClosed(t, s.Done(), "shell exit")
	waitClosed(t, relayDone, "relay end")

	assert.True(t, s.Exited())
	assert.Contains(t, out.String(), "helloworld")
	assert.NotContains(t, out.String(), "\x1b[5n")
}

func TestWriteReachesShell(t *testing.T) {
	requireSh(t)
	s, err := Start(Options{Path: "/bin/sh", Args: []string{"-c", "read line; echo got:$line"}})
	require.NoError(t, err)
	defer s.Close()

	var out syncBuffer
	relayDone := s.Relay(&out, escseq.New(nil))
	_, err = s.Write([]byte("ping\r"))
	require.NoError(t, err)

	waitClosed(t, s.Done(), "shell exit")
	waitClosed(t, relayDone, "relay end")
	assert.Contains(t, out.String(), "got:ping")
	assert.NoError(t, s.Err())
}

func TestResizePropagates(t *testing.T) {
	requireSh(t)
	s, err := Start(Options{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 0.3; stty size"},
		Cols: 80,
		Rows: 24,
	})
	require.NoError(t, err)
	defer s.Close()

	var out syncBuffer
	relayDone := s.Relay(&out, escseq.New(nil))
	require.NoError(t, s.Resize(120, 40))
	assert.Error(t, s.Resize(0, 40))

	waitClosed(t, s.Done(), "shell exit")
	waitClosed(t, relayDone, "relay end")
	assert.Equal(t, "40 120", strings.TrimSpace(out.String()))
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	var sink bytes.Buffer
	w := NewWriter(&sink)
	var wg sync.WaitGroup
	msgs := []string{"\x1b[1;1R", "\x1b[0n", "typed text", "\x1b[?1;0c"}
	for i := 0; i < 50; i++ {
		for _, m := range msgs {
			wg.Add(1)
			go func(m string) {
				defer wg.Done()
				_, _ = w.Write([]byte(m))
			}(m)
		}
	}
	wg.Wait()

	rest := sink.String()
	count := 0
	for len(rest) > 0 {
		matched := false
		for _, m := range msgs {
			if strings.HasPrefix(rest, m) {
				rest = rest[len(m):]
				matched = true
				count++
				break
			}
		}
		require.True(t, matched, "interleaved output at %q", rest)
	}
	assert.Equal(t, 200, count)
}

func TestDefaultShellUsesEnv(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")
	assert.Equal(t, "/usr/bin/zsh", DefaultShell())
	t.Setenv("SHELL", "")
	assert.Equal(t, "/bin/bash", DefaultShell())
}
