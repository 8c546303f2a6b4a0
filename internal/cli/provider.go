package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/temirov/uistream/internal/config"
	"github.com/temirov/uistream/internal/llm"
)

const (
	providerOpenAI   = "openai"
	providerGemini   = "gemini"
	providerScripted = "scripted"

	defaultOpenAIModel     = "gpt-4o-mini"
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultOpenAIKeyEnv    = "OPENAI_API_KEY"
	defaultGeminiKeyEnv    = "GEMINI_API_KEY"
	defaultMaxTokens       = 4096
	defaultPlannerMaxToken = 512

	unsupportedProviderErrorFormat = "unsupported provider %q"

	scriptedIntent   = "Give an overview of the requested data."
	scriptedApproach = "Headline metrics first, then lists."
)

// defaultScript is replayed by the scripted provider when no script file is configured.
const defaultScript = `<h1>Your year in review</h1>
<div class="metrics"><component-slot type="MetricCard" data-source="music::total_minutes" config='{"label":"Minutes listened"}'/><component-slot type="MetricCard" data-source="reading::books_read" config='{"label":"Books read"}'/><component-slot type="MetricCard" data-source="fitness::workouts" config='{"label":"Workouts"}'/></div>
<h2>Top songs</h2>
<component-slot type="List" data-source="music::top_songs" config='{"title":"title","subtitle":"artist"}'/>
<h2>Travel</h2>
<component-slot type="Map" data-source="travel::cities"/>
<p>You visited <span data-value="travel::total_countries"></span> countries.</p>
`

// providerSettings is the resolved provider selection after flags and configuration are merged.
type providerSettings struct {
	kind             string
	model            string
	baseURL          string
	apiKey           string
	maxTokens        int
	plannerModel     string
	plannerMaxTokens int
	scriptPath       string
	chunkSize        int
	delay            time.Duration
}

func resolveProviderSettings(kind, model, baseURL, scriptPath string, chunkSize int, configuration config.ApplicationConfiguration) providerSettings {
	settings := providerSettings{
		kind:             strings.ToLower(strings.TrimSpace(kind)),
		model:            strings.TrimSpace(model),
		baseURL:          strings.TrimSpace(baseURL),
		maxTokens:        config.IntValue(configuration.Provider.MaxTokens, defaultMaxTokens),
		plannerModel:     configuration.Planner.Model,
		plannerMaxTokens: config.IntValue(configuration.Planner.MaxTokens, defaultPlannerMaxToken),
		scriptPath:       strings.TrimSpace(scriptPath),
		chunkSize:        chunkSize,
	}
	if settings.kind == "" {
		settings.kind = providerScripted
	}
	keyEnv := configuration.Provider.APIKeyEnv
	switch settings.kind {
	case providerOpenAI:
		if settings.model == "" {
			settings.model = defaultOpenAIModel
		}
		if keyEnv == "" {
			keyEnv = defaultOpenAIKeyEnv
		}
	case providerGemini:
		if settings.model == "" {
			settings.model = defaultGeminiModel
		}
		if keyEnv == "" {
			keyEnv = defaultGeminiKeyEnv
		}
	}
	if keyEnv != "" {
		settings.apiKey = os.Getenv(keyEnv)
	}
	if settings.plannerModel == "" {
		settings.plannerModel = settings.model
	}
	return settings
}

// buildProviders returns the markup generator and the planner for settings. Hosted providers
// plan with a completion call; the scripted provider plans every available source.
func buildProviders(ctx context.Context, settings providerSettings) (llm.Generator, llm.Planner, error) {
	switch settings.kind {
	case providerScripted:
		var scripted *llm.Scripted
		if settings.scriptPath != "" {
			loaded, err := llm.LoadScript(settings.scriptPath, settings.chunkSize)
			if err != nil {
				return nil, nil, err
			}
			scripted = loaded
		} else {
			scripted = llm.NewScripted(defaultScript, settings.chunkSize)
		}
		scripted.Delay = settings.delay
		planner := llm.StaticPlanner{Result: llm.Plan{Intent: scriptedIntent, Approach: scriptedApproach}}
		return scripted, planner, nil
	case providerOpenAI:
		generator, err := llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:    settings.apiKey,
			BaseURL:   settings.baseURL,
			Model:     settings.model,
			MaxTokens: int64(settings.maxTokens),
		})
		if err != nil {
			return nil, nil, err
		}
		completer, err := llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:    settings.apiKey,
			BaseURL:   settings.baseURL,
			Model:     settings.plannerModel,
			MaxTokens: int64(settings.plannerMaxTokens),
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, llm.NewPlanner(completer), nil
	case providerGemini:
		generator, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:    settings.apiKey,
			Model:     settings.model,
			MaxTokens: int32(settings.maxTokens),
		})
		if err != nil {
			return nil, nil, err
		}
		completer, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:    settings.apiKey,
			Model:     settings.plannerModel,
			MaxTokens: int32(settings.plannerMaxTokens),
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, llm.NewPlanner(completer), nil
	default:
		return nil, nil, fmt.Errorf(unsupportedProviderErrorFormat, settings.kind)
	}
}
