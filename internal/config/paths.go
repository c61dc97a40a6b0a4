package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names a config file that overrides discovery.
const EnvConfigPath = "SHELLM_CONFIG"

// candidate file names inside Dir, in lookup order
var fileNames = []string{"config.toml", "config.yaml", "config.yml"}

// Dir returns the shellm config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/shellm; on macOS
// to ~/Library/Application Support/shellm; and on Windows to %AppData%/shellm.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "shellm"), nil
}

// DefaultPath is where `shellm config init` writes.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileNames[0]), nil
}

// Discover returns the config file to load: $SHELLM_CONFIG when it
// exists, else the first existing file in Dir. It returns "" when there
// is none.
func Discover() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" && fileExists(p) {
		return p
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	for _, name := range fileNames {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
