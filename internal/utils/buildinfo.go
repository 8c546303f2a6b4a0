// Package utils provides logging, version and formatting helpers shared by the commands.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion = "unknown"
	develVersion   = "(devel)"
)

// Version is stamped at link time with -ldflags "-X .../internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the stamped version, then the module version from
// build info, then git describe output, then "unknown".
func GetApplicationVersion() string {
	if stamped := strings.TrimSpace(Version); stamped != "" {
		return stamped
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	if described := describeGitVersion("."); described != "" {
		return described
	}
	return unknownVersion
}

func describeGitVersion(startDirectory string) string {
	repositoryRoot, err := findGitDirectory(startDirectory)
	if err != nil {
		return ""
	}
	for _, arguments := range [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	} {
		// #nosec G204
		command := exec.Command("git", arguments...)
		command.Dir = repositoryRoot
		described, commandErr := command.Output()
		if commandErr == nil && len(described) > 0 {
			return strings.TrimSpace(string(described))
		}
	}
	return ""
}

// findGitDirectory walks upward from startDirectory to the directory holding .git.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, err := filepath.Abs(startDirectory)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, err)
	}

	currentDirectory := absoluteStartDirectory
	for {
		fileInformation, statErr := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if statErr == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}
	return "", fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
}
