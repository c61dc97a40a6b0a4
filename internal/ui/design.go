package ui

import "github.com/charmbracelet/lipgloss"

// Design centralizes the color palette shared by the chat overlay and the
// `ask` command.
//
// Palette is based on Vitesse Dark Soft:
// https://github.com/antfu/vscode-theme-vitesse/blob/main/themes/vitesse-dark-soft.json
type designTheme struct {
	Primary lipgloss.Color // #4d9375
	Blue    lipgloss.Color // #6394bf
	Yellow  lipgloss.Color // #e6cc77
	Magenta lipgloss.Color // #d9739f
	Cyan    lipgloss.Color // #5eaab5
	Red     lipgloss.Color // #cb7676

	Text      lipgloss.Color // #dbd7ca
	Secondary lipgloss.Color // #bfbaaa
	Muted     lipgloss.Color // #758575 (comments)
}

// Vitesse is the global design theme.
var Vitesse = designTheme{
	Primary: lipgloss.Color("#4d9375"),
	Blue:    lipgloss.Color("#6394bf"),
	Yellow:  lipgloss.Color("#e6cc77"),
	Magenta: lipgloss.Color("#d9739f"),
	Cyan:    lipgloss.Color("#5eaab5"),
	Red:     lipgloss.Color("#cb7676"),

	Text:      lipgloss.Color("#dbd7ca"),
	Secondary: lipgloss.Color("#bfbaaa"),
	Muted:     lipgloss.Color("#758575"),
}

// Styles colors each kind of overlay line. Styles never change the width
// of the text they render.
type Styles struct {
	Welcome   lipgloss.Style
	Prompt    lipgloss.Style
	Assistant lipgloss.Style
	Candidate lipgloss.Style
	Reasoning lipgloss.Style
	Hint      lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles returns the Vitesse overlay styles.
func DefaultStyles() Styles {
	return Styles{
		Welcome:   lipgloss.NewStyle().Foreground(Vitesse.Secondary),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary),
		Assistant: lipgloss.NewStyle().Foreground(Vitesse.Blue),
		Candidate: lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Yellow),
		Reasoning: lipgloss.NewStyle().Foreground(Vitesse.Muted),
		Hint:      lipgloss.NewStyle().Italic(true).Foreground(Vitesse.Muted),
		Error:     lipgloss.NewStyle().Foreground(Vitesse.Red),
	}
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Welcome: s, Prompt: s, Assistant: s, Candidate: s, Reasoning: s, Hint: s, Error: s}
}

// AccentBold returns a bold style using the primary accent color.
func AccentBold() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary)
}
