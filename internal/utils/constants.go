package utils

// ApplicationName names the binary, its configuration directory and environment prefix.
const ApplicationName = "uistream"

// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
const GlobalConfigDirectoryName = "." + ApplicationName

// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
const GlobalConfigFileName = "config.yaml"

// LocalConfigFileName is the configuration file looked up in the working directory.
const LocalConfigFileName = "." + ApplicationName + ".yaml"

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"

// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal command failures.
const ApplicationExecutionFailedMessage = "application execution failed"
