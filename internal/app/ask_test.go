package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellm/internal/i18n"
	"shellm/internal/llm"
	"shellm/internal/testutil"
)

func stubAsk(t *testing.T, reply llm.Reply, err error) *string {
	t.Helper()
	var label string
	old := askFunc
	askFunc = func(_ context.Context, _ llm.Client, _ string, l string, _ io.Writer) (llm.Reply, error) {
		label = l
		return reply, err
	}
	t.Cleanup(func() { askFunc = old })
	return &label
}

func askConfig(t *testing.T, body string) string {
	t.Helper()
	testutil.ClearEnv(t, "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "SHELLM_LOG_FILE", "SHELLM_LOG_LEVEL")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestAskPrintsAnswerAndCandidate(t *testing.T) {
	path := askConfig(t, "[preference]\nlanguage = \"zh-CN\"\n")
	label := stubAsk(t, llm.Reply{Text: "List files.", Command: "ls -la"}, nil)

	var out, errOut bytes.Buffer
	require.NoError(t, ask(context.Background(), Options{ConfigPath: path, Shell: "/bin/bash"}, " list ", &out, &errOut))
	assert.Equal(t, "[思考中] ", *label)
	assert.Contains(t, out.String(), "List files.")
	assert.Contains(t, out.String(), "候选命令: ls -la\n")
}

func TestAskFailure(t *testing.T) {
	path := askConfig(t, "")
	stubAsk(t, llm.Reply{}, errors.New("boom"))
	var out bytes.Buffer
	err := ask(context.Background(), Options{ConfigPath: path, Shell: "/bin/bash"}, "q", &out, io.Discard)
	assert.EqualError(t, err, "boom")
	assert.Empty(t, out.String())
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	err := ask(context.Background(), Options{}, "  ", io.Discard, io.Discard)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestWriteAnswerWithoutCommand(t *testing.T) {
	var out bytes.Buffer
	writeAnswer(&out, i18n.Catalog{}, llm.Reply{Text: "Nothing to run."}, 80)
	assert.Contains(t, out.String(), "Nothing to run.")
	assert.NotContains(t, out.String(), "candidate:")
}
