package system

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const gitTimeout = 800 * time.Millisecond

type GitInfo struct {
	InRepo   bool
	Branch   string
	ShortSHA string
	Dirty    bool
}

// String renders the info for the system prompt, e.g. "main@1a2b3c4 (dirty)".
// Outside a repository it is empty.
func (g GitInfo) String() string {
	if !g.InRepo {
		return ""
	}
	s := g.Branch
	if s == "" {
		s = "HEAD"
	}
	if g.ShortSHA != "" {
		s += "@" + g.ShortSHA
	}
	if g.Dirty {
		s += " (dirty)"
	}
	return s
}

// GetGitInfo inspects the Git repository at dir and returns basic status.
// A missing git binary or a directory outside any repository is not an
// error.
func GetGitInfo(ctx context.Context, dir string) (GitInfo, error) {
	gi := GitInfo{}
	if _, err := exec.LookPath("git"); err != nil {
		return gi, nil
	}

	out, err := git(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil || out != "true" {
		return gi, nil
	}
	gi.InRepo = true

	if out, err := git(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
		gi.Branch = out
	} else if out, err := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		// detached head
		gi.Branch = out
	}
	if out, err := git(ctx, dir, "rev-parse", "--short", "HEAD"); err == nil {
		gi.ShortSHA = out
	}
	if out, err := git(ctx, dir, "status", "--porcelain"); err == nil {
		gi.Dirty = out != ""
	}
	return gi, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, "git", append([]string{"-C", dir}, args...)...).Output()
	return strings.TrimSpace(string(out)), err
}
