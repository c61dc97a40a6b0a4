package system

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Info describes the environment the model is asked about.
type Info struct {
	OS    string
	Arch  string
	Shell string
	Lang  string
	Cwd   string
	Git   GitInfo
}

// Collect gathers Info. shellPath is the wrapped shell and preference the
// configured language; either may be empty.
func Collect(ctx context.Context, shellPath, preference string) Info {
	info := Info{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: ShellName(shellPath),
		Lang:  Language(preference),
	}
	if wd, err := os.Getwd(); err == nil {
		info.Cwd = wd
		info.Git, _ = GetGitInfo(ctx, wd)
	}
	return info
}

// Vars returns the prompt template variables except {schema}.
func (i Info) Vars() map[string]string {
	return map[string]string{
		"os":    i.OS,
		"arch":  i.Arch,
		"shell": i.Shell,
		"lang":  i.Lang,
		"cwd":   i.Cwd,
		"git":   i.Git.String(),
	}
}

// ShellName returns the base name of the shell without extension, e.g.
// "zsh" or "powershell".
func ShellName(path string) string {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("SHELL")
	}
	if strings.TrimSpace(path) == "" {
		if runtime.GOOS == "windows" {
			if os.Getenv("PSModulePath") != "" {
				return "powershell"
			}
			return "cmd"
		}
		return "unknown"
	}
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Language returns a BCP 47 style tag: the preference when set, else one
// derived from LC_ALL or LANG ("zh_CN.UTF-8" becomes "zh-CN"), else "en-US".
func Language(preference string) string {
	if p := strings.TrimSpace(preference); p != "" {
		return p
	}
	for _, k := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(k)
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "en-US"
}
