package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"shellm/internal/config"
	"shellm/internal/i18n"
	"shellm/internal/llm"
	"shellm/internal/shell"
	"shellm/internal/system"
	"shellm/internal/termio"
	"shellm/internal/ui"
)

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("empty question")

// askFunc runs the round-trip; tests replace it to skip the spinner.
var askFunc = ui.Ask

// Ask sends one question outside the wrapper. The spinner goes to stderr,
// the rendered answer and the candidate command go to stdout.
func Ask(ctx context.Context, opts Options, question string) error {
	return ask(ctx, opts, question, os.Stdout, os.Stderr)
}

func ask(ctx context.Context, opts Options, question string, stdout, stderr io.Writer) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	cfg, _, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	closeLog, err := system.Configure(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	shellPath := firstNonEmpty(opts.Shell, cfg.Shell.Path, shell.DefaultShell())
	kit, err := newChatKit(ctx, cfg, shellPath, system.Logger)
	if err != nil {
		return err
	}
	reply, err := askFunc(ctx, kit.client, question, kit.catalog.T(i18n.ThinkingProcess), stderr)
	if err != nil {
		return err
	}
	writeAnswer(stdout, kit.catalog, reply, outputWidth(stdout))
	return nil
}

func writeAnswer(w io.Writer, cat i18n.Catalog, reply llm.Reply, width int) {
	if text := strings.TrimSpace(reply.Text); text != "" {
		fmt.Fprintln(w, ui.RenderMarkdown(text, width))
	}
	if reply.HasCommand() {
		fmt.Fprintln(w, cat.T(i18n.PromptCandidate)+reply.Command)
	}
}

func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && termio.IsTerminal(f) {
		cols, _ := termio.Size(f)
		return cols
	}
	return 80
}
