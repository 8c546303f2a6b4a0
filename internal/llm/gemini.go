package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiRoleUser              = "user"
	geminiStreamErrorFormat     = "gemini stream: %w"
	geminiCompletionErrorFormat = "gemini generate: %w"
)

// GeminiConfig configures the Gemini API adapter.
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int32
}

// Gemini streams and completes through the Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGemini validates cfg and builds a client.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingModel)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens}, nil
}

func textContent(text string) *genai.Content {
	return &genai.Content{Role: geminiRoleUser, Parts: []*genai.Part{{Text: text}}}
}

func (provider *Gemini) request(prompt Prompt) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	if provider.maxTokens > 0 {
		config.MaxOutputTokens = provider.maxTokens
	}
	return []*genai.Content{textContent(prompt.User)}, config
}

// Stream opens a streaming generation.
func (provider *Gemini) Stream(ctx context.Context, prompt Prompt) (TokenStream, error) {
	contents, config := provider.request(prompt)
	next, stop := iter.Pull2(provider.client.Models.GenerateContentStream(ctx, provider.model, contents, config))
	return &geminiStream{next: next, stop: stop}, nil
}

// Complete runs a single generation.
func (provider *Gemini) Complete(ctx context.Context, prompt Prompt) (string, error) {
	contents, config := provider.request(prompt)
	response, err := provider.client.Models.GenerateContent(ctx, provider.model, contents, config)
	if err != nil {
		return "", fmt.Errorf(geminiCompletionErrorFormat, err)
	}
	text := responseText(response)
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyCompletion)
	}
	return text, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}
	return builder.String()
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (stream *geminiStream) Next() (string, error) {
	for {
		response, err, valid := stream.next()
		if !valid {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf(geminiStreamErrorFormat, err)
		}
		if text := responseText(response); text != "" {
			return text, nil
		}
	}
}

func (stream *geminiStream) Close() error {
	stream.stop()
	return nil
}

var _ Generator = (*Gemini)(nil)
var _ Completer = (*Gemini)(nil)
