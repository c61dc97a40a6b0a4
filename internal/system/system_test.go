package system

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellm/internal/testutil"
)

func TestShellName(t *testing.T) {
	assert.Equal(t, "zsh", ShellName("/usr/bin/zsh"))
	assert.Equal(t, "powershell", ShellName(`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`))
	t.Cleanup(testutil.WithEnv(t, "SHELL", "/bin/fish"))
	assert.Equal(t, "fish", ShellName(""))
}

func TestLanguage(t *testing.T) {
	t.Cleanup(testutil.WithEnv(t, "LC_ALL", ""))
	t.Cleanup(testutil.WithEnv(t, "LANG", "zh_CN.UTF-8"))
	assert.Equal(t, "zh-CN", Language(""))
	assert.Equal(t, "ja-JP", Language("ja-JP"))

	t.Cleanup(testutil.WithEnv(t, "LANG", "C"))
	assert.Equal(t, "en-US", Language(""))

	t.Cleanup(testutil.WithEnv(t, "LC_ALL", "de_DE@euro"))
	assert.Equal(t, "de-DE", Language(""))
}

func TestGitInfoString(t *testing.T) {
	assert.Equal(t, "", GitInfo{}.String())
	assert.Equal(t, "main@abc123 (dirty)", GitInfo{InRepo: true, Branch: "main", ShortSHA: "abc123", Dirty: true}.String())
	assert.Equal(t, "HEAD", GitInfo{InRepo: true}.String())
}

func TestGetGitInfo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gi, err := GetGitInfo(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, gi.InRepo)

	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com", "GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q", "-b", "trunk")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600))
	run("add", "a.txt")
	run("commit", "-q", "-m", "init")

	gi, err = GetGitInfo(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, gi.InRepo)
	assert.Equal(t, "trunk", gi.Branch)
	assert.NotEmpty(t, gi.ShortSHA)
	assert.False(t, gi.Dirty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o600))
	gi, _ = GetGitInfo(context.Background(), dir)
	assert.True(t, gi.Dirty)
}

func TestCollectVars(t *testing.T) {
	info := Collect(context.Background(), "/bin/bash", "en-GB")
	vars := info.Vars()
	assert.Equal(t, "bash", vars["shell"])
	assert.Equal(t, "en-GB", vars["lang"])
	assert.NotEmpty(t, vars["os"])
	assert.NotEmpty(t, vars["cwd"])
}

func TestConfigureWritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "shellm.log")
	closeFn, err := Configure("debug", p)
	require.NoError(t, err)
	Logger.Debug("hello", "k", 1)
	require.NoError(t, closeFn())
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	Logger.SetLevel(clog.InfoLevel)

	_, err = Configure("loud", "")
	assert.Error(t, err)
}
