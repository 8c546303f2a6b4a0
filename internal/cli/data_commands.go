package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/uistream/internal/binding"
	"github.com/temirov/uistream/internal/catalog"
	"github.com/temirov/uistream/internal/datasource"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/output"
	"github.com/temirov/uistream/internal/segment"
)

const (
	resolveUse              = "resolve <reference...>"
	resolveAlias            = "r"
	resolveShortDescription = "bind references against the data graph (" + resolveAlias + ")"
	resolveLongDescription  = `Bind namespace::path references against the data graph and print the resolved context.
References that do not resolve are dropped. Use --path to print the value each path selects instead.`
	resolveUsageExample = `  # Print the context a request for two references would receive
  uistream resolve music::top_songs[0].title travel::cities

  # Print the sliced values as JSON
  uistream resolve --path --format json music::top_songs[0].title`

	segmentUse              = "segment [file]"
	segmentAlias            = "seg"
	segmentShortDescription = "split markup into complete units (" + segmentAlias + ")"
	segmentLongDescription  = `Feed markup from a file or standard input through the segmenter in small chunks
and print every complete unit as soon as it closes. A trailing incomplete remainder is printed last.`

	sourcesUse              = "sources"
	sourcesAlias            = "src"
	sourcesShortDescription = "list available data references (" + sourcesAlias + ")"

	pathFlagDescription     = "print the value each reference path selects"
	describeFlagDescription = "print the typed outline of the data graph"
	defaultDocumentFormat   = "yaml"
	standardInputName       = "-"
	segmentReadBufferSize   = 4096
)

func createResolveCommand(app *application) *cobra.Command {
	var format string
	var dataPath string
	var pathMode bool

	command := &cobra.Command{
		Use:     resolveUse,
		Aliases: []string{resolveAlias},
		Short:   resolveShortDescription,
		Long:    resolveLongDescription,
		Example: resolveUsageExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			graph, err := loadGraph(command.Context(), stringSetting(command, dataFlagName, dataPath, app.configuration.Data.Path))
			if err != nil {
				return err
			}
			return output.RenderDocument(command.OutOrStdout(), format, resolveDocument(arguments, graph, pathMode))
		},
	}
	command.Flags().StringVar(&format, formatFlagName, defaultDocumentFormat, formatFlagDescription+" (yaml, json)")
	command.Flags().StringVar(&dataPath, dataFlagName, "", dataFlagDescription)
	registerBooleanFlag(command.Flags(), &pathMode, pathFlagName, false, pathFlagDescription)
	return command
}

// resolveDocument returns the bound context, or per-reference values in path mode with
// unresolved references mapped to nil.
func resolveDocument(references []string, graph binding.Graph, pathMode bool) map[string]any {
	if !pathMode {
		return binding.Bind(references, graph).Native()
	}
	document := make(map[string]any, len(references))
	for _, reference := range references {
		value, found := binding.Resolve(reference, graph)
		if !found {
			document[reference] = nil
			continue
		}
		document[reference] = value.Native()
	}
	return document
}

func createSegmentCommand(app *application) *cobra.Command {
	var format string
	var chunkSize int

	command := &cobra.Command{
		Use:     segmentUse,
		Aliases: []string{segmentAlias},
		Short:   segmentShortDescription,
		Long:    segmentLongDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			reader := command.InOrStdin()
			if len(arguments) == 1 && arguments[0] != standardInputName {
				file, err := os.Open(arguments[0])
				if err != nil {
					return fmt.Errorf("open markup %s: %w", arguments[0], err)
				}
				defer file.Close()
				reader = file
			}
			components := catalog.Default().WithSelfClosingTags(app.configuration.Segmenter.SelfClosing...)
			return runSegment(command.Context(), reader, command.OutOrStdout(), format, chunkSize, components)
		},
	}
	command.Flags().StringVar(&format, formatFlagName, output.FormatJSON, formatFlagDescription+" (raw, json, sse)")
	command.Flags().IntVar(&chunkSize, chunkSizeFlagName, defaultChunkSize, chunkSizeFlagDescription)
	return command
}

// runSegment streams reader through a segmenter chunk by chunk and renders one unit event per unit.
func runSegment(ctx context.Context, reader io.Reader, writer io.Writer, format string, chunkSize int, components catalog.Catalog) error {
	if ctx == nil {
		ctx = context.Background()
	}
	renderer, err := output.NewStreamRenderer(format, writer, io.Discard, false)
	if err != nil {
		return err
	}
	segmenter := segment.NewSegmenter(segment.NewExtractor(components.SelfClosingTags))
	index := 0
	emit := func(content string, flushed bool) error {
		event := generation.Event{
			Version: generation.SchemaVersion,
			Kind:    generation.EventKindUnit,
			Unit:    &generation.UnitEvent{Index: index, Content: content, Flushed: flushed},
		}
		index++
		return renderer.Handle(event)
	}

	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	buffered := bufio.NewReaderSize(reader, segmentReadBufferSize)
	var delta strings.Builder
	runes := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		character, _, readErr := buffered.ReadRune()
		if readErr == nil {
			delta.WriteRune(character)
			runes++
		}
		if runes == chunkSize || (readErr != nil && runes > 0) {
			for _, unit := range segmenter.Write(delta.String()) {
				if err := emit(unit, false); err != nil {
					return err
				}
			}
			delta.Reset()
			runes = 0
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read markup: %w", readErr)
		}
	}
	if remainder := segmenter.Flush(); remainder != "" {
		if err := emit(remainder, true); err != nil {
			return err
		}
	}
	return renderer.Flush()
}

func createSourcesCommand(app *application) *cobra.Command {
	var dataPath string
	var describe bool

	command := &cobra.Command{
		Use:     sourcesUse,
		Aliases: []string{sourcesAlias},
		Short:   sourcesShortDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			graph, err := loadGraph(command.Context(), stringSetting(command, dataFlagName, dataPath, app.configuration.Data.Path))
			if err != nil {
				return err
			}
			if describe {
				_, err = io.WriteString(command.OutOrStdout(), binding.Describe(graph))
				return err
			}
			_, err = fmt.Fprintln(command.OutOrStdout(), strings.Join(graph.Sources(), "\n"))
			return err
		},
	}
	command.Flags().StringVar(&dataPath, dataFlagName, "", dataFlagDescription)
	registerBooleanFlag(command.Flags(), &describe, describeFlagName, false, describeFlagDescription)
	return command
}

func loadGraph(ctx context.Context, dataPath string) (binding.Graph, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return datasource.NewProvider(dataPath).Graph(ctx)
}
