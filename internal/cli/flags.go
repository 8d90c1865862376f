package cli

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// Exit codes for the CLI.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Output format constants.
const (
	OutputText = tui.FormatText
	OutputJSON = tui.FormatJSON
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Repo selects the repository by registry id or path. Empty means the
	// repository containing the working directory.
	Repo string
}

// AddGlobalFlags adds the persistent flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&flags.Repo, "repo", "r", "", "repository id or path (default: current repository)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// globalFlagNames lists the persistent flags that have a WORKHORSE_*
// environment counterpart.
//
//nolint:gochecknoglobals // Fixed list
var globalFlagNames = []string{"output", "verbose", "quiet", "repo"}

// BindGlobalFlags binds the global flags to Viper so they can also be set
// through WORKHORSE_OUTPUT, WORKHORSE_VERBOSE, WORKHORSE_QUIET and
// WORKHORSE_REPO. A flag given on the command line wins over the
// environment; an environment value is copied into flags left unset.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range globalFlagNames {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for _, name := range globalFlagNames {
		f := rootFlags.Lookup(name)
		if f.Changed || explicitlyExcluded(rootFlags, name) {
			continue
		}
		val := v.GetString(name)
		if val == "" || val == f.Value.String() {
			continue
		}
		if err := rootFlags.Set(name, val); err != nil {
			return fmt.Errorf("%s_%s: %w: %w", envPrefix, strings.ToUpper(name), errors.ErrInvalidArgument, err)
		}
	}

	return nil
}

const envPrefix = "WORKHORSE"

// explicitlyExcluded reports whether the command line set the flag that
// name is mutually exclusive with.
func explicitlyExcluded(fs *pflag.FlagSet, name string) bool {
	switch name {
	case "verbose":
		return fs.Changed("quiet")
	case "quiet":
		return fs.Changed("verbose")
	}
	return false
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError maps an error to the process exit code: 0 for nil, 2 for
// invalid input (bad flags, arguments or validation failures) and 1 for
// everything else.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.IsExitCode2Error(err) || stderrors.Is(err, errors.ErrInvalidOutputFormat) {
		return ExitInvalidInput
	}
	if errors.KindOf(err) == errors.KindValidation {
		return ExitInvalidInput
	}
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isInvalidInputError catches cobra's own flag and argument errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"at least one of the flags in the group",
		"required flag",
		"unknown command",
		"accepts ",
		"requires at least",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
