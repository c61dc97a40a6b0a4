package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "shellm/internal/config"
	"shellm/internal/testutil"
	appver "shellm/internal/version"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		opts.ConfigPath = ""
		initForce = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, appver.AppVersion+"\n", out)
}

func TestConfigPathPrefersFlag(t *testing.T) {
	out, err := run(t, "--config", "/tmp/x/shellm.toml", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x/shellm.toml\n", out)
}

func TestConfigPathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.yaml")
	t.Cleanup(testutil.WithEnv(t, cfg.EnvConfigPath, p))
	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, p, strings.TrimSpace(out))
}

func TestConfigSchema(t *testing.T) {
	out, err := run(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"llm"`)
	assert.Contains(t, out, `"precise_width"`)
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte("[llm]\nmodel = \"m\"\n"), 0o600))
	_, err := run(t, "--config", p, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestAskNeedsQuestion(t *testing.T) {
	_, err := run(t, "ask")
	assert.Error(t, err)
}
