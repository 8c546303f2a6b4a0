package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const (
	openAIStreamErrorFormat     = "openai stream: %w"
	openAICompletionErrorFormat = "openai chat: %w"
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int64
}

// OpenAI streams and completes through the chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI validates cfg and builds a client.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingModel)
	}
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client:    openai.NewClient(options...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (provider *OpenAI) params(prompt Prompt) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))
	params := openai.ChatCompletionNewParams{
		Model:    provider.model,
		Messages: messages,
	}
	if provider.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(provider.maxTokens)
	}
	return params
}

// Stream opens a streaming chat completion.
func (provider *OpenAI) Stream(ctx context.Context, prompt Prompt) (TokenStream, error) {
	stream := provider.client.Chat.Completions.NewStreaming(ctx, provider.params(prompt))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf(openAIStreamErrorFormat, err)
	}
	return &openAIStream{stream: stream}, nil
}

// Complete runs a non-streaming chat completion.
func (provider *OpenAI) Complete(ctx context.Context, prompt Prompt) (string, error) {
	response, err := provider.client.Chat.Completions.New(ctx, provider.params(prompt))
	if err != nil {
		return "", fmt.Errorf(openAICompletionErrorFormat, err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyCompletion)
	}
	return response.Choices[0].Message.Content, nil
}

type openAIStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (stream *openAIStream) Next() (string, error) {
	for stream.stream.Next() {
		chunk := stream.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
	if err := stream.stream.Err(); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf(openAIStreamErrorFormat, err)
	}
	return "", io.EOF
}

func (stream *openAIStream) Close() error {
	return stream.stream.Close()
}

var _ Generator = (*OpenAI)(nil)
var _ Completer = (*OpenAI)(nil)
