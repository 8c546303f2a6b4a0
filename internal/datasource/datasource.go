// Package datasource loads data graphs from files or serves the built-in sample graph.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/temirov/uistream/internal/binding"
)

const (
	readFileErrorFormat  = "read data graph %s: %w"
	parseFileErrorFormat = "parse data graph %s: %w"
)

// ErrEmptyPath is returned when a file provider has no path configured.
var ErrEmptyPath = errors.New("data graph path is empty")

// Provider supplies the data graph for one request.
type Provider interface {
	Graph(ctx context.Context) (binding.Graph, error)
}

// FileProvider reads the graph from a YAML or JSON document on every call so edits are picked up.
type FileProvider struct {
	Path string
}

// Graph loads the configured file.
func (provider FileProvider) Graph(ctx context.Context) (binding.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(provider.Path)
}

// StaticProvider serves a fixed graph.
type StaticProvider struct {
	Data binding.Graph
}

// Graph returns the fixed graph.
func (provider StaticProvider) Graph(ctx context.Context) (binding.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return provider.Data, nil
}

// NewProvider returns a FileProvider for path, or the sample graph when path is blank.
func NewProvider(path string) Provider {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return StaticProvider{Data: Sample()}
	}
	return FileProvider{Path: trimmed}
}

// Load parses a YAML or JSON document whose top level maps namespaces to key/value mappings.
// Namespaces whose value is not a mapping are ignored.
func Load(path string) (binding.Graph, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(readFileErrorFormat, path, err)
	}
	return Parse(path, content)
}

// Parse decodes document content; name is used in error messages only.
func Parse(name string, content []byte) (binding.Graph, error) {
	var document map[string]any
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, fmt.Errorf(parseFileErrorFormat, name, err)
	}
	return binding.GraphFromAny(document), nil
}

var _ Provider = FileProvider{}
var _ Provider = StaticProvider{}
