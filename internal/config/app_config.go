package config

import (
	"strings"
	"time"
)

// ApplicationConfiguration holds the defaults every command starts from.
type ApplicationConfiguration struct {
	Provider  ProviderConfiguration  `mapstructure:"provider"`
	Planner   PlannerConfiguration   `mapstructure:"planner"`
	Data      DataConfiguration      `mapstructure:"data"`
	Segmenter SegmenterConfiguration `mapstructure:"segmenter"`
	Server    ServerConfiguration    `mapstructure:"server"`
	Output    OutputConfiguration    `mapstructure:"output"`
	Tokens    TokenConfiguration     `mapstructure:"tokens"`
	Log       LogConfiguration       `mapstructure:"log"`
}

// ProviderConfiguration selects and configures the markup generator.
type ProviderConfiguration struct {
	Kind       string `mapstructure:"kind"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	APIKeyEnv  string `mapstructure:"api_key_env"`
	MaxTokens  *int   `mapstructure:"max_tokens"`
	ScriptPath string `mapstructure:"script_path"`
	ChunkSize  *int   `mapstructure:"chunk_size"`
}

// PlannerConfiguration overrides the provider settings used for planning.
type PlannerConfiguration struct {
	Model     string `mapstructure:"model"`
	MaxTokens *int   `mapstructure:"max_tokens"`
}

// DataConfiguration points at the data graph file.
type DataConfiguration struct {
	Path string `mapstructure:"path"`
}

// SegmenterConfiguration extends the self-closing tag allow-list.
type SegmenterConfiguration struct {
	SelfClosing []string `mapstructure:"self_closing"`
}

// ServerConfiguration controls the HTTP server.
type ServerConfiguration struct {
	Address         string        `mapstructure:"address"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OutputConfiguration controls how events are rendered.
type OutputConfiguration struct {
	Format    string `mapstructure:"format"`
	Summary   *bool  `mapstructure:"summary"`
	Clipboard *bool  `mapstructure:"clipboard"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LogConfiguration controls the application logger.
type LogConfiguration struct {
	Level string `mapstructure:"level"`
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Provider = result.Provider.merge(override.Provider)
	result.Planner = result.Planner.merge(override.Planner)
	result.Data = result.Data.merge(override.Data)
	result.Segmenter = result.Segmenter.merge(override.Segmenter)
	result.Server = result.Server.merge(override.Server)
	result.Output = result.Output.merge(override.Output)
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Log = result.Log.merge(override.Log)
	return result
}

func (config ProviderConfiguration) merge(override ProviderConfiguration) ProviderConfiguration {
	result := config
	if override.Kind != "" {
		result.Kind = strings.ToLower(override.Kind)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.APIKeyEnv != "" {
		result.APIKeyEnv = override.APIKeyEnv
	}
	if override.MaxTokens != nil {
		result.MaxTokens = cloneInt(override.MaxTokens)
	}
	if override.ScriptPath != "" {
		result.ScriptPath = override.ScriptPath
	}
	if override.ChunkSize != nil {
		result.ChunkSize = cloneInt(override.ChunkSize)
	}
	return result
}

func (config PlannerConfiguration) merge(override PlannerConfiguration) PlannerConfiguration {
	result := config
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.MaxTokens != nil {
		result.MaxTokens = cloneInt(override.MaxTokens)
	}
	return result
}

func (config DataConfiguration) merge(override DataConfiguration) DataConfiguration {
	result := config
	if override.Path != "" {
		result.Path = override.Path
	}
	return result
}

func (config SegmenterConfiguration) merge(override SegmenterConfiguration) SegmenterConfiguration {
	result := config
	if len(override.SelfClosing) > 0 {
		result.SelfClosing = deduplicate(override.SelfClosing)
	}
	return result
}

func (config ServerConfiguration) merge(override ServerConfiguration) ServerConfiguration {
	result := config
	if override.Address != "" {
		result.Address = override.Address
	}
	if len(override.CORSOrigins) > 0 {
		result.CORSOrigins = deduplicate(override.CORSOrigins)
	}
	if override.ShutdownTimeout > 0 {
		result.ShutdownTimeout = override.ShutdownTimeout
	}
	return result
}

func (config OutputConfiguration) merge(override OutputConfiguration) OutputConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config LogConfiguration) merge(override LogConfiguration) LogConfiguration {
	result := config
	if override.Level != "" {
		result.Level = override.Level
	}
	return result
}

// BoolValue dereferences value or returns fallback when unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// IntValue dereferences value or returns fallback when unset.
func IntValue(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func deduplicate(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
