package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger. The wrapped shell owns the
// terminal, so it discards everything until Configure points it at a file.
var Logger = clog.NewWithOptions(io.Discard, clog.Options{
	ReportTimestamp: true,
	Prefix:          "shellm",
})

// Configure sets the level and, when file is non-empty, appends log
// output to it. The returned func closes the file.
func Configure(level, file string) (closeFn func() error, err error) {
	closeFn = func() error { return nil }
	if strings.TrimSpace(level) != "" {
		lvl, perr := clog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if perr != nil {
			return closeFn, fmt.Errorf("log level %q: %w", level, perr)
		}
		Logger.SetLevel(lvl)
	}
	if strings.TrimSpace(file) == "" {
		return closeFn, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return closeFn, err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return closeFn, fmt.Errorf("open log file: %w", err)
	}
	Logger.SetOutput(f)
	return func() error {
		Logger.SetOutput(io.Discard)
		return f.Close()
	}, nil
}
