// Package overlay implements the in-terminal chat mode: a line editor, a
// streamed reasoning preview and a reply block that is drawn, truncated and
// erased with exact row accounting.
package overlay

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"shellm/internal/escseq"
	"shellm/internal/geometry"
	"shellm/internal/i18n"
	"shellm/internal/keys"
	"shellm/internal/llm"
	"shellm/internal/ui"
)

// Phase is the state of the overlay's input loop.
type Phase int

const (
	Collecting Phase = iota
	Waiting
	Displaying
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Displaying:
		return "displaying"
	default:
		return "collecting"
	}
}

// Options wires an overlay to the terminal and the model.
type Options struct {
	In       <-chan keys.Event
	Out      io.Writer
	Locator  escseq.Locator // optional; used to reserve rows below the cursor
	Size     func() (cols, rows int)
	Client   llm.Client
	Catalog  i18n.Catalog
	Bindings keys.Bindings
	Metric   geometry.Metric
	Styles   ui.Styles
	Logger   *clog.Logger
}

// Overlay is one chat session. It is not safe for concurrent use and is
// discarded after Run returns.
type Overlay struct {
	opts Options
	lay  layouter

	phase    Phase
	input    []rune
	history  []llm.Message
	reply    llm.Reply
	answered bool
	failure  string
	notice   string
	command  string
	expanded bool

	// rows written by the last block and prompt renders
	blockRows  int
	promptRows int
}

// New returns an overlay ready to Run.
func New(opts Options) *Overlay {
	if opts.Size == nil {
		opts.Size = func() (int, int) { return 80, 24 }
	}
	if opts.Logger == nil {
		opts.Logger = clog.New(io.Discard)
	}
	return &Overlay{
		opts: opts,
		lay: layouter{
			metric: opts.Metric,
			cat:    opts.Catalog,
			styles: opts.Styles,
			toggle: opts.Bindings.Toggle,
		},
	}
}

// Phase reports the current state.
func (o *Overlay) Phase() Phase { return o.phase }

// History returns the conversation so far.
func (o *Overlay) History() []llm.Message { return o.history }

// Run takes over the terminal until the user accepts a command (ok is
// true) or cancels. It fails only when the input ends or ctx is done.
func (o *Overlay) Run(ctx context.Context) (command string, ok bool, err error) {
	o.welcome()
	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case ev, open := <-o.opts.In:
			if !open {
				return "", false, io.EOF
			}
			if cmd, exit := o.handle(ctx, ev); exit {
				return cmd, cmd != "", nil
			}
		}
	}
}

func (o *Overlay) handle(ctx context.Context, ev keys.Event) (string, bool) {
	switch ev.Kind {
	case keys.KindPaste:
		o.input = append(o.input, []rune(clean(geometry.Flatten(ev.Paste)))...)
		o.redrawPrompt()
		return "", false
	case keys.KindKey:
	default:
		return "", false
	}

	b := o.opts.Bindings
	k := ev.Key
	switch {
	case k == b.Accept:
		if o.command == "" {
			o.notice = o.opts.Catalog.T(i18n.NoCandidate)
			o.redrawBlock()
			return "", false
		}
		o.opts.Logger.Debug("overlay accept", "command", o.command)
		return o.command, true
	case k == b.Toggle:
		if o.phase == Displaying && strings.TrimSpace(o.reply.Reasoning) != "" {
			o.expanded = !o.expanded
			o.redrawBlock()
		}
	case k == b.Cancel:
		o.opts.Logger.Debug("overlay cancel")
		return "", true
	case k.Code == keys.CodeEnter && k.Mod == 0:
		o.submit(ctx)
	case k.Code == keys.CodeBackspace:
		if len(o.input) > 0 {
			o.input = o.input[:len(o.input)-1]
			o.redrawPrompt()
		}
	case k.Code == keys.CodeRune && k.Mod&(keys.ModCtrl|keys.ModAlt) == 0 && k.Rune >= 0x20:
		o.input = append(o.input, k.Rune)
		o.redrawPrompt()
	}
	return "", false
}

// submit performs one round-trip for the current input line.
func (o *Overlay) submit(ctx context.Context) {
	text := strings.TrimRight(string(o.input), " \t")
	if text == "" {
		return
	}
	if o.expanded && o.answered {
		o.expanded = false
		o.redrawBlock()
	}

	o.phase = Waiting
	o.input = o.input[:0]
	o.write("\r\n" + ansi.EraseEntireLine)
	o.promptRows = 0

	id := uuid.NewString()
	log := o.opts.Logger.With("round", id)
	log.Info("chat request", "chars", len(text), "history", len(o.history))
	start := time.Now()

	preview := newPreview(o)
	reply, err := llm.Collect(o.opts.Client.Chat(ctx, o.history, text), preview.add)
	preview.clear()

	o.notice = ""
	if err != nil {
		log.Warn("chat failed", "err", err, "elapsed", time.Since(start))
		o.failure = err.Error()
		o.reply = llm.Reply{}
		o.command = ""
		o.answered = false
		o.expanded = false
		o.phase = Collecting
		o.drawBlock()
		return
	}
	log.Info("chat reply", "elapsed", time.Since(start), "command", reply.HasCommand(), "reasoning", len(reply.Reasoning))

	o.history = append(o.history,
		llm.Message{Role: llm.RoleUser, Content: text},
		llm.Message{Role: llm.RoleAssistant, Content: reply.Text},
	)
	o.failure = ""
	o.reply = reply
	o.answered = true
	o.expanded = false
	o.command = reply.Command
	o.phase = Displaying
	o.drawBlock()
}

func (o *Overlay) view() view {
	if o.failure != "" {
		return view{failure: o.failure, notice: o.notice}
	}
	if !o.answered {
		return view{notice: o.notice}
	}
	v := replyView(o.reply, o.expanded)
	v.notice = o.notice
	return v
}

func (o *Overlay) welcome() {
	b := o.opts.Bindings
	msg := fmt.Sprintf(o.opts.Catalog.T(i18n.WelcomeMessage), b.Accept, b.Cancel, b.Toggle)
	var f strings.Builder
	f.WriteString("\r\n" + ansi.EraseEntireLine)
	f.WriteString(o.opts.Styles.Welcome.Render(msg))
	f.WriteString("\r\n")
	o.writePrompt(&f)
	o.write(f.String())
}

func (o *Overlay) write(s string) {
	if _, err := io.WriteString(o.opts.Out, s); err != nil {
		o.opts.Logger.Debug("overlay write", "err", err)
	}
}

func (o *Overlay) size() (cols, rows int) {
	cols, rows = o.opts.Size()
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	return cols, rows
}

func (o *Overlay) promptText() string {
	return o.opts.Catalog.T(i18n.PromptUser) + string(o.input)
}
