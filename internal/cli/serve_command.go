package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/uistream/internal/catalog"
	"github.com/temirov/uistream/internal/config"
	"github.com/temirov/uistream/internal/datasource"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/inspect"
	"github.com/temirov/uistream/internal/services/server"
	"github.com/temirov/uistream/internal/tokenizer"
)

const (
	serveUse              = "serve"
	serveAlias            = "s"
	serveShortDescription = "serve generation over HTTP as server-sent events (" + serveAlias + ")"
	serveLongDescription  = `Run an HTTP server exposing GET /health, GET /api/sources and POST /api/generate.
Generation requests stream plan, context, unit, warning, summary and terminal events as server-sent events.`
	serveUsageExample = `  # Serve the scripted dashboard for a local frontend
  uistream serve --address 127.0.0.1:8000 --cors-origin http://localhost:3000`

	addressFlagDescription = "listen address"
	corsFlagDescription    = "allowed CORS origin; repeatable"
	defaultServeAddress    = "127.0.0.1:8000"
	serverListeningFormat  = "Listening on http://%s\n"
)

func createServeCommand(app *application) *cobra.Command {
	var address string
	var corsOrigins []string
	var dataPath string
	var provider string
	var model string
	var tokens bool

	command := &cobra.Command{
		Use:     serveUse,
		Aliases: []string{serveAlias},
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := app.configuration
			settings := resolveProviderSettings(
				stringSetting(command, providerFlagName, provider, configuration.Provider.Kind),
				stringSetting(command, modelFlagName, model, configuration.Provider.Model),
				configuration.Provider.BaseURL,
				configuration.Provider.ScriptPath,
				config.IntValue(configuration.Provider.ChunkSize, defaultChunkSize),
				configuration,
			)
			generator, planner, err := buildProviders(command.Context(), settings)
			if err != nil {
				return err
			}
			var counter tokenizer.Counter
			var tokenModel string
			if boolSetting(command, tokensFlagName, tokens, configuration.Tokens.Enabled) {
				createdCounter, resolvedModel, counterErr := tokenizer.NewCounter(tokenizer.Config{Model: configuration.Tokens.Model})
				if counterErr != nil {
					return counterErr
				}
				counter = createdCounter
				tokenModel = resolvedModel
			}

			data := datasource.NewProvider(stringSetting(command, dataFlagName, dataPath, configuration.Data.Path))
			components := catalog.Default().WithSelfClosingTags(configuration.Segmenter.SelfClosing...)
			inspector := inspect.New()
			logger := app.logger
			newLoop := func(requestID string) *generation.Loop {
				return generation.NewLoop(generation.Dependencies{
					Planner:    planner,
					Generator:  generator,
					Data:       data,
					Catalog:    components,
					Inspector:  inspector,
					Counter:    counter,
					TokenModel: tokenModel,
					Logger:     logger,
					RequestID:  requestID,
				})
			}

			origins := corsOrigins
			if !command.Flags().Changed(corsFlagName) && len(configuration.Server.CORSOrigins) > 0 {
				origins = configuration.Server.CORSOrigins
			}
			httpServer := server.NewServer(server.Config{
				Address:         stringSetting(command, addressFlagName, address, configuration.Server.Address),
				ShutdownTimeout: configuration.Server.ShutdownTimeout,
				CORSOrigins:     origins,
				Data:            data,
				NewLoop:         newLoop,
				Logger:          logger,
			})
			return httpServer.Run(command.Context(), func(boundAddress string) {
				fmt.Fprintf(command.OutOrStdout(), serverListeningFormat, boundAddress)
			})
		},
	}
	flags := command.Flags()
	flags.StringVar(&address, addressFlagName, defaultServeAddress, addressFlagDescription)
	flags.StringArrayVar(&corsOrigins, corsFlagName, nil, corsFlagDescription)
	flags.StringVar(&dataPath, dataFlagName, "", dataFlagDescription)
	flags.StringVar(&provider, providerFlagName, providerScripted, providerFlagDescription)
	flags.StringVar(&model, modelFlagName, "", modelFlagDescription)
	registerBooleanFlag(flags, &tokens, tokensFlagName, false, tokensFlagDescription)
	return command
}
