package cli

import (
	"github.com/spf13/pflag"
)

// registerCopyFlag registers --copy on generate. Only generate carries the flag,
// so "--copy no" is folded into the flag after generate or g and nowhere else.
func registerCopyFlag(flagSet *pflag.FlagSet, target *bool) {
	registerBooleanFlag(flagSet, target, copyFlagName, false, copyFlagDescription)
}
