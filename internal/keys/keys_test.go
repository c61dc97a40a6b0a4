package keys

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, d *Decoder, chunks ...string) []Event {
	t.Helper()
	var evs []Event
	for _, c := range chunks {
		evs = append(evs, d.Feed([]byte(c))...)
	}
	return evs
}

func keysOf(evs []Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Key.String())
	}
	return out
}

func TestDecodeKeys(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"letters", "ls", []string{"l", "s"}},
		{"enter and backspace", "\r\x7f\x08", []string{"enter", "backspace", "backspace"}},
		{"control letters", "\x0c\x12\x03", []string{"ctrl+l", "ctrl+r", "ctrl+c"}},
		{"line feed", "\n", []string{"ctrl+j"}},
		{"arrows", "\x1b[A\x1bOB\x1b[1;5C", []string{"up", "down", "ctrl+right"}},
		{"tilde keys", "\x1b[3~\x1b[5~\x1b[1~", []string{"delete", "pgup", "home"}},
		{"alt", "\x1bx\x1b\x7f", []string{"alt+x", "alt+backspace"}},
		{"wide runes", "你好", []string{"你", "好"}},
		{"lone esc", "\x1b", []string{"esc"}},
		{"shift tab", "\x1b[Z", []string{"shift+tab"}},
		{"unknown csi", "\x1b[15~", []string{"unknown"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var d Decoder
			assert.Equal(t, c.want, keysOf(decodeAll(t, &d, c.in)))
		})
	}
}

func TestRawBytesPreserved(t *testing.T) {
	var d Decoder
	in := "a\x1b[1;5C中\x1bOA"
	var raw strings.Builder
	for _, ev := range d.Feed([]byte(in)) {
		raw.Write(ev.Raw)
	}
	assert.Equal(t, in, raw.String())
}

func TestSplitRuneAndSequence(t *testing.T) {
	var d Decoder
	b := []byte("中")
	evs := decodeAll(t, &d, string(b[:1]), string(b[1:]), "\x1b[", "A")
	assert.Equal(t, []string{"中", "up"}, keysOf(evs))
}

func TestBracketedPasteAcrossChunks(t *testing.T) {
	var d Decoder
	evs := decodeAll(t, &d, "x\x1b[200~line one\n", "line two\x1b[2", "01~y")
	require.Len(t, evs, 3)
	assert.Equal(t, "x", evs[0].Key.String())
	assert.Equal(t, KindPaste, evs[1].Kind)
	assert.Equal(t, "line one\nline two", evs[1].Paste)
	assert.Equal(t, "\x1b[200~line one\nline two\x1b[201~", string(evs[1].Raw))
	assert.Equal(t, "y", evs[2].Key.String())
}

func TestCursorReportOnlyWhenExpected(t *testing.T) {
	var d Decoder
	evs := decodeAll(t, &d, "\x1b[12;40R")
	require.Len(t, evs, 1)
	assert.Equal(t, KindKey, evs[0].Kind)

	d.ExpectReport = func() bool { return true }
	evs = decodeAll(t, &d, "\x1b[12;40R")
	require.Len(t, evs, 1)
	assert.Equal(t, KindCursorReport, evs[0].Kind)
	assert.Equal(t, Position{Row: 12, Col: 40}, evs[0].Pos)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, name := range []string{"a", "ctrl+l", "alt+x", "enter", "backspace", "tab", "esc", "up", "ctrl+right", "delete", "pgdown", "shift+tab", "你"} {
		k, err := ParseKey(name)
		require.NoError(t, err, name)
		raw := Encode(k)
		require.NotEmpty(t, raw, name)
		var d Decoder
		evs := d.Feed(raw)
		require.Len(t, evs, 1, name)
		assert.Equal(t, k, evs[0].Key, name)
	}
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" Ctrl+L ")
	require.NoError(t, err)
	assert.Equal(t, Ctrl('l'), k)

	k, err = ParseKey("ctrl+space")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, Encode(k))

	_, err = ParseKey("hyper+x")
	assert.Error(t, err)
	_, err = ParseKey("")
	assert.Error(t, err)
	_, err = ParseKey("ctrl+nope")
	assert.Error(t, err)
}

func TestParseBindings(t *testing.T) {
	b, err := ParseBindings("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBindings(), b)

	b, err = ParseBindings("ctrl+g", "ctrl+y", "", "esc")
	require.NoError(t, err)
	assert.Equal(t, "ctrl+g", b.Chat.String())
	assert.Equal(t, "ctrl+y", b.Accept.String())
	assert.Equal(t, "ctrl+r", b.Toggle.String())
	assert.Equal(t, "esc", b.Cancel.String())

	_, err = ParseBindings("", "ctrl+r", "", "")
	assert.Error(t, err)
}

func TestReaderRoutesReports(t *testing.T) {
	pr, pw := io.Pipe()
	rd := NewReader(pr)
	done := rd.ExpectCursorReport()

	go func() {
		_, _ = pw.Write([]byte("a\x1b[3;7R"))
		_ = pw.Close()
	}()

	select {
	case pos := <-rd.CursorReports():
		assert.Equal(t, Position{Row: 3, Col: 7}, pos)
	case <-time.After(2 * time.Second):
		t.Fatal("no cursor report")
	}
	done()
	done()

	var got []string
	for ev := range rd.Events() {
		got = append(got, ev.Key.String())
	}
	assert.Equal(t, []string{"a"}, got)
	assert.NoError(t, rd.Err())
}
