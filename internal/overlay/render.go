package overlay

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"shellm/internal/geometry"
	"shellm/internal/i18n"
)

// maxPreview bounds the reasoning kept for the one-line preview.
const maxPreview = 8 << 10

// drawBlock renders the reply block and the prompt starting at the
// current line, which must be empty with the cursor in column 0.
func (o *Overlay) drawBlock() {
	var f strings.Builder
	o.renderBlock(&f)
	o.write(f.String())
}

// redrawBlock erases exactly the rows of the last block and prompt, then
// renders both again.
func (o *Overlay) redrawBlock() {
	var f strings.Builder
	f.WriteString("\r")
	if up := o.blockRows + o.promptRows - 1; up > 0 {
		f.WriteString(ansi.CursorUp(up))
	}
	f.WriteString(ansi.EraseScreenBelow)
	o.renderBlock(&f)
	o.write(f.String())
}

func (o *Overlay) renderBlock(f *strings.Builder) {
	cols, rows := o.size()
	promptRows := o.opts.Metric.LineRows(o.promptText(), cols)
	b := o.lay.layout(o.view(), cols, rows-promptRows)
	o.reserve(f, b.rows+promptRows, rows)
	for _, ln := range b.lines {
		f.WriteString(ln.style.Render(ln.text))
		f.WriteString("\r\n")
	}
	o.blockRows = b.rows
	if b.collapsed || b.truncated {
		o.opts.Logger.Debug("reply block clipped", "rows", b.rows, "height", rows, "collapsed", b.collapsed)
	}
	o.writePrompt(f)
}

// reserve makes sure n rows starting at the cursor's line are on screen.
// When the screen is short by some rows it scrolls by exactly that many
// and returns the cursor to the same content line.
func (o *Overlay) reserve(f *strings.Builder, n, height int) {
	if n <= 1 {
		return
	}
	if o.opts.Locator != nil {
		o.write(f.String())
		f.Reset()
		row, _, err := o.opts.Locator.CursorPosition()
		if err == nil && row >= 0 && row < height {
			avail := height - row
			if n <= avail {
				return
			}
			move := height - 1 - row + n - avail
			f.WriteString(strings.Repeat("\n", move))
			f.WriteString(ansi.CursorUp(move))
			return
		}
		o.opts.Logger.Debug("cursor position unavailable; reserving blindly", "err", err)
	}
	f.WriteString(strings.Repeat("\n", n-1))
	f.WriteString(ansi.CursorUp(n - 1))
}

// redrawPrompt rewrites the input line in place, including rows it wrapped onto.
func (o *Overlay) redrawPrompt() {
	var f strings.Builder
	f.WriteString("\r")
	if o.promptRows > 1 {
		f.WriteString(ansi.CursorUp(o.promptRows - 1))
	}
	f.WriteString(ansi.EraseScreenBelow)
	o.writePrompt(&f)
	o.write(f.String())
}

func (o *Overlay) writePrompt(f *strings.Builder) {
	cols, _ := o.size()
	f.WriteString(o.opts.Styles.Prompt.Render(o.opts.Catalog.T(i18n.PromptUser)))
	f.WriteString(string(o.input))
	o.promptRows = o.opts.Metric.LineRows(o.promptText(), cols)
}

// preview shows the tail of the streamed reasoning on a single row.
type preview struct {
	o     *Overlay
	buf   strings.Builder
	shown bool
}

func newPreview(o *Overlay) *preview { return &preview{o: o} }

func (p *preview) add(fragment string) {
	p.buf.WriteString(clean(geometry.Flatten(fragment)))
	if p.buf.Len() > maxPreview {
		s := p.buf.String()
		cut := len(s) - maxPreview/2
		for cut < len(s) && !utf8.RuneStart(s[cut]) {
			cut++
		}
		p.buf.Reset()
		p.buf.WriteString(s[cut:])
	}
	cols, _ := p.o.size()
	m := p.o.opts.Metric
	prefix := p.o.opts.Catalog.T(i18n.ThinkingProcess)
	text := m.TruncateTail(p.buf.String(), cols-m.Width(prefix)-1)
	p.o.write("\r" + ansi.EraseEntireLine + p.o.opts.Styles.Reasoning.Render(prefix+text))
	p.shown = true
}

func (p *preview) clear() {
	if p.shown {
		p.o.write("\r" + ansi.EraseEntireLine)
	}
}
