package main

import (
	"fmt"

	"github.com/temirov/uistream/internal/cli"
	"github.com/temirov/uistream/internal/utils"
)

// main is the entry point for the uistream command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger("")
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
