package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/uistream/internal/config"
	"github.com/temirov/uistream/internal/utils"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ./` + utils.LocalConfigFileName + `, or to ~/` +
		utils.GlobalConfigDirectoryName + `/` + utils.GlobalConfigFileName + ` with --global.`
	globalFlagDescription = "write the global configuration instead of the local one"
	forceFlagDescription  = "overwrite an existing configuration file"
	initCompletedFormat   = "Configuration written to %s\n"
)

func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	command := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), initCompletedFormat, path)
			return err
		},
	}
	registerBooleanFlag(command.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(command.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return command
}
