// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/uistream/internal/config"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/services/clipboard"
	"github.com/temirov/uistream/internal/utils"
)

const (
	configFlagName       = "config"
	logLevelFlagName     = "log-level"
	versionFlagName      = "version"
	formatFlagName       = "format"
	summaryFlagName      = "summary"
	tokensFlagName       = "tokens"
	tokenModelFlagName   = "token-model"
	referenceFlagName    = "ref"
	dataFlagName         = "data"
	providerFlagName     = "provider"
	modelFlagName        = "model"
	baseURLFlagName      = "base-url"
	scriptFlagName       = "script"
	chunkSizeFlagName    = "chunk-size"
	delayFlagName        = "delay"
	copyFlagName         = "copy"
	pathFlagName         = "path"
	describeFlagName     = "describe"
	addressFlagName      = "address"
	corsFlagName         = "cors-origin"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "uistream version: %s\n"
	rootUse              = "uistream"
	rootShortDescription = "uistream command line interface"
	rootLongDescription  = `uistream streams generated UI markup one complete unit at a time.
It plans which data a query needs, binds those references against a data graph, and segments
the generated markup into balanced units as tokens arrive.
Use --config to select a configuration file and --version to print the application version.`

	configFlagDescription     = "configuration file (defaults to ./" + utils.LocalConfigFileName + ")"
	logLevelFlagDescription   = "log level (debug, info, warn, error)"
	versionFlagDescription    = "display application version"
	formatFlagDescription     = "output format"
	summaryFlagDescription    = "include the run summary"
	tokensFlagDescription     = "count tokens of the generated markup"
	tokenModelFlagDescription = "tokenizer model to use for token counting"
	referenceFlagDescription  = "data reference (namespace::path); repeatable, skips planning"
	dataFlagDescription       = "data graph file (YAML or JSON); the sample graph is used when empty"
	providerFlagDescription   = "markup provider (openai, gemini, scripted)"
	modelFlagDescription      = "provider model"
	baseURLFlagDescription    = "OpenAI-compatible endpoint base URL"
	scriptFlagDescription     = "markup file replayed by the scripted provider"
	chunkSizeFlagDescription  = "runes per replayed chunk"
	delayFlagDescription      = "pause before each replayed chunk"
	copyFlagDescription       = "copy the generated markup to the system clipboard"

	defaultOutputFormat   = "raw"
	defaultTokenizerModel = "gpt-4o"
	defaultChunkSize      = 16

	loadConfigurationErrorFormat = "load configuration: %w"
	initializeLoggerErrorFormat  = "initialize logger: %w"
)

// application carries what every command shares once the root command has run.
type application struct {
	configuration config.ApplicationConfiguration
	logger        *zap.Logger
	copier        clipboard.Copier

	workingDirectory string
	homeDirectory    string
}

// Execute runs the uistream application until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCommand := createRootCommand(&application{copier: clipboard.NewService()})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool
	var configPath string
	var logLevel string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			configuration, err := config.LoadApplicationConfiguration(config.LoadOptions{
				WorkingDirectory: app.workingDirectory,
				ExplicitFilePath: configPath,
				HomeDirectory:    app.homeDirectory,
			})
			if err != nil {
				return fmt.Errorf(loadConfigurationErrorFormat, err)
			}
			app.configuration = configuration
			if app.logger == nil {
				level := configuration.Log.Level
				if command.Flags().Changed(logLevelFlagName) {
					level = logLevel
				}
				logger, loggerErr := utils.NewApplicationLogger(level)
				if loggerErr != nil {
					return fmt.Errorf(initializeLoggerErrorFormat, loggerErr)
				}
				app.logger = logger
			}
			return nil
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().StringVar(&logLevel, logLevelFlagName, "", logLevelFlagDescription)
	rootCommand.AddCommand(
		createGenerateCommand(app),
		createResolveCommand(app),
		createSegmentCommand(app),
		createSourcesCommand(app),
		createServeCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// stringSetting prefers an explicitly set flag, then the configured value, then the flag default.
func stringSetting(command *cobra.Command, flagName, flagValue, configured string) string {
	if command.Flags().Changed(flagName) || configured == "" {
		return flagValue
	}
	return configured
}

func boolSetting(command *cobra.Command, flagName string, flagValue bool, configured *bool) bool {
	if command.Flags().Changed(flagName) {
		return flagValue
	}
	return config.BoolValue(configured, flagValue)
}

func intSetting(command *cobra.Command, flagName string, flagValue int, configured *int) int {
	if command.Flags().Changed(flagName) {
		return flagValue
	}
	return config.IntValue(configured, flagValue)
}

// dispatchStream runs produce and consume concurrently over an unbuffered channel.
func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- generation.Event) error,
	consume func(generation.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan generation.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
