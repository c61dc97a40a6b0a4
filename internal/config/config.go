// Package config loads shellm's settings from a TOML or YAML file, the
// environment and built-in defaults, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"shellm/internal/keys"
)

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultTimeout    = 120
	DefaultMaxRetries = 2
	DefaultLogLevel   = "info"
)

// Config is the whole configuration file.
type Config struct {
	LLM        LLMConfig        `toml:"llm" yaml:"llm"`
	Prompt     PromptConfig     `toml:"prompt" yaml:"prompt"`
	Shell      ShellConfig      `toml:"shell" yaml:"shell"`
	Preference PreferenceConfig `toml:"preference" yaml:"preference"`
	Keys       KeysConfig       `toml:"keys" yaml:"keys"`
	UI         UIConfig         `toml:"ui" yaml:"ui"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

// LLMConfig selects the OpenAI-compatible endpoint.
type LLMConfig struct {
	APIKey      string  `toml:"api_key,omitempty" yaml:"api_key,omitempty" jsonschema:"description=API key; falls back to OPENAI_API_KEY"`
	Model       string  `toml:"model,omitempty" yaml:"model,omitempty" jsonschema:"description=Model name; falls back to OPENAI_MODEL then gpt-4o-mini"`
	BaseURL     string  `toml:"base_url,omitempty" yaml:"base_url,omitempty" jsonschema:"description=API base URL; falls back to OPENAI_BASE_URL"`
	Timeout     int     `toml:"timeout,omitempty" yaml:"timeout,omitempty" jsonschema:"description=Request timeout in seconds"`
	MaxRetries  int     `toml:"max_retries,omitempty" yaml:"max_retries,omitempty" jsonschema:"description=Retries on transient HTTP failures"`
	JSONMode    bool    `toml:"json_mode,omitempty" yaml:"json_mode,omitempty" jsonschema:"description=Request response_format json_object"`
	Temperature float32 `toml:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// PromptConfig holds the system prompt template.
type PromptConfig struct {
	Template string `toml:"template,omitempty" yaml:"template,omitempty" jsonschema:"description=System prompt; placeholders {os} {arch} {shell} {lang} {cwd} {git} {schema}"`
}

// ShellConfig selects the wrapped shell.
type ShellConfig struct {
	Path string   `toml:"path,omitempty" yaml:"path,omitempty" jsonschema:"description=Shell executable; defaults to $SHELL"`
	Args []string `toml:"args,omitempty" yaml:"args,omitempty"`
}

// PreferenceConfig holds user preferences.
type PreferenceConfig struct {
	Language string `toml:"language,omitempty" yaml:"language,omitempty" jsonschema:"description=Reply and UI language such as en-US or zh-CN; defaults to $LANG"`
}

// KeysConfig names the hotkeys, e.g. "ctrl+l".
type KeysConfig struct {
	Chat   string `toml:"chat,omitempty" yaml:"chat,omitempty"`
	Accept string `toml:"accept,omitempty" yaml:"accept,omitempty"`
	Toggle string `toml:"toggle,omitempty" yaml:"toggle,omitempty"`
	Cancel string `toml:"cancel,omitempty" yaml:"cancel,omitempty"`
}

// UIConfig tunes the overlay.
type UIConfig struct {
	PreciseWidth bool `toml:"precise_width,omitempty" yaml:"precise_width,omitempty" jsonschema:"description=Measure text with Unicode width tables instead of the two-column heuristic"`
}

// LogConfig sets up the debug log. The terminal belongs to the shell, so
// logs only go to a file.
type LogConfig struct {
	Level string `toml:"level,omitempty" yaml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	File  string `toml:"file,omitempty" yaml:"file,omitempty"`
}

// ParseError reports a config file that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse config %s: %v", e.Path, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// envOverrides are consulted for settings the file leaves empty.
type envOverrides struct {
	APIKey   string `envconfig:"OPENAI_API_KEY"`
	Model    string `envconfig:"OPENAI_MODEL"`
	BaseURL  string `envconfig:"OPENAI_BASE_URL"`
	LogFile  string `envconfig:"SHELLM_LOG_FILE"`
	LogLevel string `envconfig:"SHELLM_LOG_LEVEL"`
}

// Load reads the config at path, or the discovered file when path is
// empty, and fills the gaps from the environment and defaults. It returns
// the path actually read ("" when none).
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = Discover()
	}
	cfg := &Config{}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, path, err
		}
	}
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, path, fmt.Errorf("read environment: %w", err)
	}
	cfg.fill(env)
	return cfg, path, nil
}

// Default returns the configuration used when no file exists and the
// environment is empty.
func Default() *Config {
	cfg := &Config{}
	cfg.fill(envOverrides{})
	return cfg
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

func (c *Config) fill(env envOverrides) {
	c.LLM.APIKey = firstNonEmpty(c.LLM.APIKey, env.APIKey)
	c.LLM.Model = firstNonEmpty(c.LLM.Model, env.Model, DefaultModel)
	c.LLM.BaseURL = firstNonEmpty(c.LLM.BaseURL, env.BaseURL, DefaultBaseURL)
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = DefaultTimeout
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	} else if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = DefaultMaxRetries
	}
	if strings.TrimSpace(c.Prompt.Template) == "" {
		c.Prompt.Template = DefaultPromptTemplate
	}
	c.Log.File = firstNonEmpty(c.Log.File, env.LogFile)
	c.Log.Level = firstNonEmpty(c.Log.Level, env.LogLevel, DefaultLogLevel)
}

// RequestTimeout is LLM.Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.LLM.Timeout) * time.Second
}

// Bindings parses the configured hotkeys.
func (c *Config) Bindings() (keys.Bindings, error) {
	b, err := keys.ParseBindings(c.Keys.Chat, c.Keys.Accept, c.Keys.Toggle, c.Keys.Cancel)
	if err != nil {
		return keys.Bindings{}, fmt.Errorf("keys: %w", err)
	}
	return b, nil
}

// Save writes c as TOML, creating the directory when needed. Fields
// equal to their defaults are omitted.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("no config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out := *c
	if out.Prompt.Template == DefaultPromptTemplate {
		out.Prompt.Template = ""
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
