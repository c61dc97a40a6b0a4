package app

import (
	"context"

	clog "github.com/charmbracelet/log"

	"shellm/internal/config"
	"shellm/internal/geometry"
	"shellm/internal/i18n"
	"shellm/internal/keys"
	"shellm/internal/llm"
	"shellm/internal/system"
)

// chatKit is everything the overlay needs that comes from configuration.
// A config reload builds a new kit; a running overlay keeps its own.
type chatKit struct {
	client   llm.Client
	catalog  i18n.Catalog
	bindings keys.Bindings
	metric   geometry.Metric
}

func newChatKit(ctx context.Context, cfg *config.Config, shellPath string, log *clog.Logger) (*chatKit, error) {
	bindings, err := cfg.Bindings()
	if err != nil {
		return nil, err
	}
	info := system.Collect(ctx, shellPath, cfg.Preference.Language)
	vars := info.Vars()
	vars["schema"] = llm.ResponseSchemaJSON()

	metric := geometry.Heuristic
	if cfg.UI.PreciseWidth {
		metric = geometry.Precise
	}
	client := llm.NewOpenAI(llm.OpenAIOptions{
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		BaseURL:      cfg.LLM.BaseURL,
		SystemPrompt: config.RenderPrompt(cfg.Prompt.Template, vars),
		Temperature:  cfg.LLM.Temperature,
		JSONMode:     cfg.LLM.JSONMode,
		Timeout:      cfg.RequestTimeout(),
		MaxRetries:   cfg.LLM.MaxRetries,
		Logger:       log,
	})
	log.Debug("chat ready", "model", cfg.LLM.Model, "base_url", cfg.LLM.BaseURL, "lang", info.Lang, "shell", info.Shell)
	return &chatKit{
		client:   client,
		catalog:  i18n.Catalog{Lang: i18n.ParseLanguage(info.Lang)},
		bindings: bindings,
		metric:   metric,
	}, nil
}
