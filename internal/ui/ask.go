package ui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shellm/internal/geometry"
	"shellm/internal/llm"
)

const maxAskPreview = 4 << 10

type reasoningMsg string

type replyMsg struct {
	reply llm.Reply
	err   error
}

// askModel shows a spinner with the tail of the streamed reasoning until
// the reply arrives.
type askModel struct {
	spinner   spinner.Model
	label     string
	reasoning string
	width     int
	done      bool
	reply     llm.Reply
	err       error
}

func newAskModel(label string) askModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Vitesse.Primary)
	return askModel{spinner: sp, label: label, width: 80}
}

func (m askModel) Init() tea.Cmd { return m.spinner.Tick }

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case reasoningMsg:
		m.reasoning += geometry.Flatten(string(msg))
		if len(m.reasoning) > maxAskPreview {
			m.reasoning = geometry.TruncateTail(m.reasoning, maxAskPreview/2)
		}
	case replyMsg:
		m.done = true
		m.reply, m.err = msg.reply, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m askModel) View() string {
	if m.done {
		return ""
	}
	head := m.spinner.View() + " " + m.label
	avail := m.width - lipgloss.Width(head) - 2
	tail := geometry.TruncateTail(strings.TrimSpace(m.reasoning), avail)
	if tail == "" {
		return head
	}
	return head + " " + lipgloss.NewStyle().Foreground(Vitesse.Muted).Render(tail)
}

// Ask runs one round-trip with a spinner on out and returns the reply.
func Ask(ctx context.Context, client llm.Client, question, label string, out io.Writer) (llm.Reply, error) {
	p := tea.NewProgram(newAskModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)
	go func() {
		reply, err := llm.Collect(client.Chat(ctx, nil, question), func(f string) {
			p.Send(reasoningMsg(f))
		})
		p.Send(replyMsg{reply: reply, err: err})
	}()
	final, err := p.Run()
	if err != nil {
		return llm.Reply{}, err
	}
	m := final.(askModel)
	return m.reply, m.err
}
