package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

// glamour adds a two-column gutter on each side of the text
const glamourGutter = 2

func vitesseGlamour() ansi.StyleConfig {
	sp := func(c lipgloss.Color) *string { s := string(c); return &s }
	str := func(s string) *string { return &s }
	bp := func(b bool) *bool { return &b }

	text := Vitesse.Text
	secondary := Vitesse.Secondary
	blue := Vitesse.Blue
	heading := ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(blue), Bold: bp(true)}}

	return ansi.StyleConfig{
		Document:   ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
		Paragraph:  ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
		BlockQuote: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(secondary), Italic: bp(true)}},
		Heading:    heading,
		H1:         heading,
		H2:         heading,
		H3:         heading,
		H4:         heading,
		H5:         heading,
		H6:         heading,

		Text:           ansi.StylePrimitive{Color: sp(text)},
		Emph:           ansi.StylePrimitive{Italic: bp(true)},
		Strong:         ansi.StylePrimitive{Bold: bp(true)},
		Strikethrough:  ansi.StylePrimitive{CrossedOut: bp(true)},
		HorizontalRule: ansi.StylePrimitive{Color: sp(secondary)},
		Item:           ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration:    ansi.StylePrimitive{BlockPrefix: ". "},

		Link:     ansi.StylePrimitive{Color: sp(blue), Underline: bp(true)},
		LinkText: ansi.StylePrimitive{Color: sp(blue), Underline: bp(true)},

		Code: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(Vitesse.Yellow)}},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
			Chroma: &ansi.Chroma{
				Text:          ansi.StylePrimitive{Color: sp(text)},
				Comment:       ansi.StylePrimitive{Color: sp(Vitesse.Muted), Italic: bp(true)},
				Keyword:       ansi.StylePrimitive{Color: sp(Vitesse.Primary), Bold: bp(true)},
				NameFunction:  ansi.StylePrimitive{Color: sp(blue)},
				NameBuiltin:   ansi.StylePrimitive{Color: sp(Vitesse.Magenta)},
				LiteralString: ansi.StylePrimitive{Color: sp(Vitesse.Yellow)},
				LiteralNumber: ansi.StylePrimitive{Color: sp(Vitesse.Magenta)},
				Operator:      ansi.StylePrimitive{Color: sp(secondary)},
				Punctuation:   ansi.StylePrimitive{Color: sp(secondary)},
			},
		},

		Table: ansi.StyleTable{
			StyleBlock:      ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
			CenterSeparator: str("│"),
			ColumnSeparator: str("│"),
			RowSeparator:    str("─"),
		},
	}
}

// RenderMarkdown renders md for a terminal of the given width. It falls
// back to the plain text when rendering fails.
func RenderMarkdown(md string, width int) string {
	wrap := width - 2*glamourGutter
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(vitesseGlamour()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return trimEdgeBlankLines(out)
}

func trimEdgeBlankLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	j := len(lines) - 1
	for j >= i && strings.TrimSpace(lines[j]) == "" {
		j--
	}
	return strings.Join(lines[i:j+1], "\n")
}
