package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellm/internal/geometry"
	"shellm/internal/llm/llmtest"
)

func TestPlainStylesKeepText(t *testing.T) {
	s := PlainStyles()
	for _, st := range []string{"you> ", "assistant> 你好", "candidate: ls -la"} {
		assert.Equal(t, st, ansi.Strip(s.Prompt.Render(st)))
		assert.Equal(t, geometry.DisplayWidth(st), geometry.DisplayWidth(ansi.Strip(DefaultStyles().Candidate.Render(st))))
	}
}

func TestAskModelPreview(t *testing.T) {
	m := newAskModel("thinking")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	next, _ = next.Update(reasoningMsg("first line\nsecond line that is rather long"))
	view := ansi.Strip(next.View())
	assert.NotContains(t, view, "\n")
	assert.LessOrEqual(t, lipgloss.Width(view), 30)
	assert.True(t, strings.HasSuffix(view, "rather long"))

	next, cmd := next.Update(replyMsg{err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.Empty(t, next.View())
	assert.EqualError(t, next.(askModel).err, "boom")
}

func TestAskReturnsReply(t *testing.T) {
	client := llmtest.New(llmtest.Reply("use ls", "ls -la", "look", " around"))
	var out bytes.Buffer
	reply, err := Ask(context.Background(), client, "list files", "thinking", &out)
	require.NoError(t, err)
	assert.Equal(t, "use ls", reply.Text)
	assert.Equal(t, "ls -la", reply.Command)
	assert.Equal(t, "look around", reply.Reasoning)
	assert.Equal(t, "list files", client.Calls()[0].Input)
}

func TestAskReportsFailure(t *testing.T) {
	client := llmtest.New(llmtest.Fail(errors.New("no key")))
	_, err := Ask(context.Background(), client, "q", "thinking", &bytes.Buffer{})
	assert.EqualError(t, err, "no key")
}

func TestRenderMarkdown(t *testing.T) {
	out := ansi.Strip(RenderMarkdown("# Title\n\nUse `ls -la` to list **all** files.", 60))
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "ls -la")
	assert.False(t, strings.HasPrefix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n"))
}
