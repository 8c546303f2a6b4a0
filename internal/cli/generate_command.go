package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/uistream/internal/catalog"
	"github.com/temirov/uistream/internal/datasource"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/inspect"
	"github.com/temirov/uistream/internal/output"
	"github.com/temirov/uistream/internal/tokenizer"
)

const (
	generateUse              = "generate [query...]"
	generateAlias            = "g"
	generateShortDescription = "stream generated markup units (" + generateAlias + ")"
	generateLongDescription  = `Plan the data a query needs, bind it, and stream the generated markup one complete unit at a time.
Use --ref to skip planning, --format to select raw, json, or sse output, and --copy to place the markup on the clipboard.`
	generateUsageExample = `  # Replay the built-in dashboard against the sample data
  uistream generate "show my year"

  # Ask OpenAI for markup bound to explicit references
  uistream generate --provider openai --ref music::top_songs "my top songs"

  # Emit server-sent events with token counts
  uistream generate --format sse --tokens "reading stats"`

	errorMissingQuery = "a query or at least one --ref is required"
	copyErrorFormat   = "copy markup to clipboard: %w"
)

type generateOptions struct {
	format          string
	summary         bool
	tokens          bool
	tokenModel      string
	references      []string
	dataPath        string
	provider        string
	model           string
	baseURL         string
	scriptPath      string
	chunkSize       int
	delay           time.Duration
	copyToClipboard bool
}

func createGenerateCommand(app *application) *cobra.Command {
	var options generateOptions

	command := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Long:    generateLongDescription,
		Example: generateUsageExample,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runGenerate(command.Context(), command, app, options, arguments)
		},
	}
	flags := command.Flags()
	flags.StringVar(&options.format, formatFlagName, defaultOutputFormat, formatFlagDescription+" (raw, json, sse)")
	registerBooleanFlag(flags, &options.summary, summaryFlagName, true, summaryFlagDescription)
	registerBooleanFlag(flags, &options.tokens, tokensFlagName, false, tokensFlagDescription)
	flags.StringVar(&options.tokenModel, tokenModelFlagName, defaultTokenizerModel, tokenModelFlagDescription)
	flags.StringArrayVar(&options.references, referenceFlagName, nil, referenceFlagDescription)
	flags.StringVar(&options.dataPath, dataFlagName, "", dataFlagDescription)
	flags.StringVar(&options.provider, providerFlagName, providerScripted, providerFlagDescription)
	flags.StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	flags.StringVar(&options.baseURL, baseURLFlagName, "", baseURLFlagDescription)
	flags.StringVar(&options.scriptPath, scriptFlagName, "", scriptFlagDescription)
	flags.IntVar(&options.chunkSize, chunkSizeFlagName, defaultChunkSize, chunkSizeFlagDescription)
	flags.DurationVar(&options.delay, delayFlagName, 0, delayFlagDescription)
	registerCopyFlag(flags, &options.copyToClipboard)
	return command
}

func runGenerate(ctx context.Context, command *cobra.Command, app *application, options generateOptions, arguments []string) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	query := strings.TrimSpace(strings.Join(arguments, " "))
	if query == "" && len(options.references) == 0 {
		return errors.New(errorMissingQuery)
	}
	configuration := app.configuration

	settings := resolveProviderSettings(
		stringSetting(command, providerFlagName, options.provider, configuration.Provider.Kind),
		stringSetting(command, modelFlagName, options.model, configuration.Provider.Model),
		stringSetting(command, baseURLFlagName, options.baseURL, configuration.Provider.BaseURL),
		stringSetting(command, scriptFlagName, options.scriptPath, configuration.Provider.ScriptPath),
		intSetting(command, chunkSizeFlagName, options.chunkSize, configuration.Provider.ChunkSize),
		configuration,
	)
	settings.delay = options.delay
	generator, planner, err := buildProviders(ctx, settings)
	if err != nil {
		return err
	}

	dependencies := generation.Dependencies{
		Planner:   planner,
		Generator: generator,
		Data:      datasource.NewProvider(stringSetting(command, dataFlagName, options.dataPath, configuration.Data.Path)),
		Catalog:   catalog.Default().WithSelfClosingTags(configuration.Segmenter.SelfClosing...),
		Inspector: inspect.New(),
		Logger:    app.logger,
	}
	if boolSetting(command, tokensFlagName, options.tokens, configuration.Tokens.Enabled) {
		counter, model, counterErr := tokenizer.NewCounter(tokenizer.Config{
			Model: stringSetting(command, tokenModelFlagName, options.tokenModel, configuration.Tokens.Model),
		})
		if counterErr != nil {
			return counterErr
		}
		dependencies.Counter = counter
		dependencies.TokenModel = model
	}

	renderer, err := output.NewStreamRenderer(
		stringSetting(command, formatFlagName, options.format, configuration.Output.Format),
		command.OutOrStdout(),
		command.ErrOrStderr(),
		boolSetting(command, summaryFlagName, options.summary, configuration.Output.Summary),
	)
	if err != nil {
		return err
	}
	defer func() {
		if flushErr := renderer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	loop := generation.NewLoop(dependencies)
	request := generation.Request{Query: query, References: options.references}
	var markup strings.Builder

	producer := func(streamCtx context.Context, events chan<- generation.Event) error {
		return loop.Run(streamCtx, request, events)
	}
	consumer := func(event generation.Event) error {
		if event.Kind == generation.EventKindUnit && event.Unit != nil {
			markup.WriteString(event.Unit.Content)
		}
		return renderer.Handle(event)
	}
	if streamErr := dispatchStream(ctx, producer, consumer); streamErr != nil {
		return streamErr
	}

	if boolSetting(command, copyFlagName, options.copyToClipboard, configuration.Output.Clipboard) && markup.Len() > 0 && app.copier != nil {
		if copyErr := app.copier.Copy(markup.String()); copyErr != nil {
			return fmt.Errorf(copyErrorFormat, copyErr)
		}
	}
	return nil
}
