package settings

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"shellm/internal/config"
	"shellm/internal/keys"
)

// Languages offered by the wizard.
var Languages = []string{"en-US", "zh-CN"}

// values are the fields the wizard edits.
type values struct {
	APIKey       string
	BaseURL      string
	Model        string
	Language     string
	ChatKey      string
	JSONMode     bool
	PreciseWidth bool
}

func fromConfig(c *config.Config) values {
	lang := c.Preference.Language
	if lang == "" {
		lang = Languages[0]
	}
	chat := c.Keys.Chat
	if chat == "" {
		chat = keys.DefaultBindings().Chat.String()
	}
	return values{
		APIKey:       c.LLM.APIKey,
		BaseURL:      c.LLM.BaseURL,
		Model:        c.LLM.Model,
		Language:     lang,
		ChatKey:      chat,
		JSONMode:     c.LLM.JSONMode,
		PreciseWidth: c.UI.PreciseWidth,
	}
}

func (v values) apply(c *config.Config) {
	c.LLM.APIKey = strings.TrimSpace(v.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(v.BaseURL)
	c.LLM.Model = strings.TrimSpace(v.Model)
	c.Preference.Language = v.Language
	c.Keys.Chat = strings.TrimSpace(v.ChatKey)
	c.LLM.JSONMode = v.JSONMode
	c.UI.PreciseWidth = v.PreciseWidth
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("expected an http(s) URL")
	}
	return nil
}

func validateNonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateKey(s string) error {
	_, err := keys.ParseKey(s)
	return err
}

func theme() *huh.Theme {
	green := lipgloss.Color("#03BF87")
	t := huh.ThemeCharm()
	t.FieldSeparator = lipgloss.NewStyle()
	t.Blurred.Title = t.Blurred.Title.Width(18).Foreground(lipgloss.Color("7"))
	t.Focused.Title = t.Focused.Title.Width(18).Foreground(green).Bold(true)
	t.Blurred.SelectedOption = t.Blurred.SelectedOption.Foreground(lipgloss.Color("243"))
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(green)
	t.Focused.Base = t.Focused.Base.BorderForeground(green)
	return t
}

func newForm(v *values, path string) *huh.Form {
	langs := make([]huh.Option[string], 0, len(Languages))
	for _, l := range Languages {
		langs = append(langs, huh.NewOption(l, l))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("shellm").Description("Settings are saved to "+path),
			huh.NewInput().Title("API key").
				Description("Leave empty to use OPENAI_API_KEY").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey),
			huh.NewInput().Title("Base URL").Value(&v.BaseURL).Validate(validateURL),
			huh.NewInput().Title("Model").Value(&v.Model).Validate(validateNonEmpty),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language").Options(langs...).Value(&v.Language),
			huh.NewInput().Title("Chat hotkey").Value(&v.ChatKey).Validate(validateKey),
			huh.NewConfirm().Title("JSON mode").
				Description("Ask the endpoint for response_format json_object").
				Value(&v.JSONMode),
			huh.NewConfirm().Title("Precise width").
				Description("Measure CJK and emoji with Unicode width tables").
				Value(&v.PreciseWidth),
		),
	).WithTheme(theme()).WithWidth(60)
}

// Run launches the interactive settings form for the config at path,
// seeded from cfg, and saves the result on submit.
func Run(path string, cfg *config.Config) error {
	v := fromConfig(cfg)
	if err := newForm(&v, path).Run(); err != nil {
		return err // form canceled or failed
	}
	v.apply(cfg)
	if _, err := cfg.Bindings(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("\n✓ Saved %s\n\n", path)
	return nil
}
