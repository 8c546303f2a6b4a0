// Package tokenizer estimates token counts of generated markup.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a tiktoken Counter for the requested model. Models tiktoken does
// not know fall back to the cl100k_base encoding. The second result names the encoding
// or model actually used.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	if encoding, err := tiktoken.EncodingForModel(lowerModel); err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: lowerModel}, model, nil
	}
	fallback, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", err)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
