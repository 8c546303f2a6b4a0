package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName       = "bool"
	booleanFlagTrueLiteral    = "true"
	booleanFlagLiteralListing = "true, false, yes, no, on, off, 1, 0"
	booleanFlagErrorFormat    = "invalid boolean value %q for --%s; accepted values: %s"
	flagPrefix                = "--"
	flagValueSeparator        = "="
	endOfFlagsMarker          = "--"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseBooleanLiteral reports the value of a yes/no style literal.
func parseBooleanLiteral(input string) (bool, bool) {
	value, known := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(input))]
	return value, known
}

// toggleValue is a pflag.Value for switches such as --tokens and --summary that
// accept yes/no style literals in addition to true/false.
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = booleanFlagTrueLiteral
	}
	parsed, known := parseBooleanLiteral(input)
	if !known || value.target == nil {
		return fmt.Errorf(booleanFlagErrorFormat, input, value.name, booleanFlagLiteralListing)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag registers a toggle that also accepts "--name literal"
// once the arguments pass through normalizeBooleanFlagArguments.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target, name: name}, name, usage)
	if flag := flagSet.Lookup(name); flag != nil {
		flag.DefValue = strconv.FormatBool(defaultValue)
		flag.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments rewrites "--name literal" into "--name=literal" for
// boolean flags. Flags are resolved against the subcommand selected so far, so a
// toggle is only folded where the command that defines it is in effect. A value
// that is not a boolean literal stays a positional argument.
func normalizeBooleanFlagArguments(rootCommand *cobra.Command, arguments []string) []string {
	if rootCommand == nil || len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	current := rootCommand
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == endOfFlagsMarker {
			return append(normalized, arguments[index:]...)
		}
		if !strings.HasPrefix(argument, "-") {
			if child := findSubcommand(current, argument); child != nil {
				current = child
			}
			normalized = append(normalized, argument)
			continue
		}
		normalized = append(normalized, argument)
		name, isLong := strings.CutPrefix(argument, flagPrefix)
		if !isLong || strings.Contains(name, flagValueSeparator) || index+1 >= len(arguments) {
			continue
		}
		flag := lookupCommandFlag(current, name)
		if flag == nil {
			continue
		}
		next := arguments[index+1]
		if _, isToggle := flag.Value.(*toggleValue); !isToggle {
			if flag.NoOptDefVal == "" {
				normalized = append(normalized, next)
				index++
			}
			continue
		}
		if _, known := parseBooleanLiteral(next); known {
			normalized[len(normalized)-1] = flagPrefix + name + flagValueSeparator + next
			index++
		}
	}
	return normalized
}

func findSubcommand(command *cobra.Command, argument string) *cobra.Command {
	for _, child := range command.Commands() {
		if child.Name() == argument || child.HasAlias(argument) {
			return child
		}
	}
	return nil
}

func lookupCommandFlag(command *cobra.Command, name string) *pflag.Flag {
	if flag := command.Flags().Lookup(name); flag != nil {
		return flag
	}
	return command.InheritedFlags().Lookup(name)
}
