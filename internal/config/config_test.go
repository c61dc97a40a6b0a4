package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellm/internal/keys"
	"shellm/internal/testutil"
)

var envKeys = []string{"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "SHELLM_LOG_FILE", "SHELLM_LOG_LEVEL", EnvConfigPath}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	t.Cleanup(testutil.WithEnv(t, "XDG_CONFIG_HOME", t.TempDir()))
	t.Cleanup(testutil.WithEnv(t, "HOME", t.TempDir()))

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.LLM.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.LLM.MaxRetries)
	assert.Equal(t, DefaultPromptTemplate, cfg.Prompt.Template)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout())
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOMLOverridesEnv(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	t.Cleanup(testutil.WithEnv(t, "OPENAI_API_KEY", "env-key"))
	t.Cleanup(testutil.WithEnv(t, "OPENAI_MODEL", "env-model"))
	t.Cleanup(testutil.WithEnv(t, "OPENAI_BASE_URL", "http://env.example/v1"))
	t.Cleanup(testutil.WithEnv(t, "SHELLM_LOG_LEVEL", "debug"))

	p := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, p, `
[llm]
model = "file-model"
timeout = 30
json_mode = true

[shell]
path = "/bin/zsh"
args = ["-l"]

[preference]
language = "zh-CN"

[keys]
chat = "ctrl+g"
`)
	cfg, got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "file-model", cfg.LLM.Model)
	assert.Equal(t, "http://env.example/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 30, cfg.LLM.Timeout)
	assert.True(t, cfg.LLM.JSONMode)
	assert.Equal(t, "/bin/zsh", cfg.Shell.Path)
	assert.Equal(t, []string{"-l"}, cfg.Shell.Args)
	assert.Equal(t, "zh-CN", cfg.Preference.Language)
	assert.Equal(t, "debug", cfg.Log.Level)

	b, err := cfg.Bindings()
	require.NoError(t, err)
	assert.Equal(t, keys.Ctrl('g'), b.Chat)
	assert.Equal(t, keys.DefaultBindings().Accept, b.Accept)
}

func TestLoadYAML(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "llm:\n  model: yaml-model\n  max_retries: -1\nui:\n  precise_width: true\n")
	cfg, _, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "yaml-model", cfg.LLM.Model)
	assert.Equal(t, 0, cfg.LLM.MaxRetries)
	assert.True(t, cfg.UI.PreciseWidth)
}

func TestLoadParseError(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	p := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, p, "[llm\nmodel=")
	_, _, err := Load(p)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, p, pe.Path)
}

func TestBindingsConflict(t *testing.T) {
	cfg := Default()
	cfg.Keys.Toggle = "ctrl+c"
	_, err := cfg.Bindings()
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	base := t.TempDir()
	t.Cleanup(testutil.WithEnv(t, "XDG_CONFIG_HOME", base))
	t.Cleanup(testutil.WithEnv(t, "HOME", base))
	dir, err := Dir()
	require.NoError(t, err)
	assert.Empty(t, Discover())

	writeFile(t, filepath.Join(dir, "config.yml"), "llm: {}\n")
	assert.Equal(t, filepath.Join(dir, "config.yml"), Discover())

	writeFile(t, filepath.Join(dir, "config.toml"), "")
	assert.Equal(t, filepath.Join(dir, "config.toml"), Discover())

	explicit := filepath.Join(t.TempDir(), "mine.toml")
	t.Cleanup(testutil.WithEnv(t, EnvConfigPath, explicit))
	assert.Equal(t, filepath.Join(dir, "config.toml"), Discover(), "missing override file is ignored")
	writeFile(t, explicit, "")
	assert.Equal(t, explicit, Discover())
}

func TestSaveRoundTrip(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	p := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.LLM.APIKey = "sk-test"
	cfg.Preference.Language = "en-US"
	cfg.Keys.Chat = "ctrl+g"
	require.NoError(t, Save(p, cfg))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "template", "default template is not written out")

	got, _, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	assert.Error(t, Save("", cfg))
}

func TestRenderPrompt(t *testing.T) {
	tpl := "on {os}/{arch} in {shell}, answer in {lang}; {unknown} {os}"
	out := RenderPrompt(tpl, map[string]string{"os": "linux", "arch": "amd64", "shell": "bash", "lang": "en-US"})
	assert.Equal(t, "on linux/amd64 in bash, answer in en-US; {unknown} linux", out)
	assert.Equal(t, tpl, RenderPrompt(tpl, nil))
	// substituted values are not expanded again
	assert.Equal(t, "{arch}", RenderPrompt("{os}", map[string]string{"os": "{arch}", "arch": "x"}))
}

func TestSchema(t *testing.T) {
	data, err := MarshalSchema(Schema())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, k := range []string{"llm", "prompt", "shell", "preference", "keys", "ui", "log"} {
		assert.Contains(t, props, k)
	}
	llm := props["llm"].(map[string]any)["properties"].(map[string]any)
	assert.Contains(t, llm, "api_key")
	assert.Contains(t, llm, "base_url")
}

func TestWatchReloads(t *testing.T) {
	testutil.ClearEnv(t, envKeys...)
	p := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, p, "[llm]\nmodel = \"one\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string
	err := Watch(ctx, p, clog.New(os.Stderr), func(c *Config) {
		mu.Lock()
		seen = append(seen, c.LLM.Model)
		mu.Unlock()
	})
	require.NoError(t, err)

	writeFile(t, p, "[llm]\nmodel = \"two\"\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "two"
	}, 3*time.Second, 20*time.Millisecond)

	// a broken file keeps the previous settings
	writeFile(t, p, "[llm\n")
	time.Sleep(4 * reloadDelay)
	mu.Lock()
	assert.Equal(t, "two", seen[len(seen)-1])
	mu.Unlock()
}
