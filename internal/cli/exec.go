package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/terminal"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// AddExecCommand adds the exec command to the root command.
func AddExecCommand(parent *cobra.Command) {
	var spec domain.CommandSpec

	cmd := &cobra.Command{
		Use:   "exec -- <command> [args...]",
		Short: "Run a single command outside any terminal session",
		Long: `Run one command to completion without a shell session. Its stdout is
printed when it succeeds, its stderr when it fails.

A single argument is split with shell quoting rules, so these are the same:
  workhorse exec -- git log --oneline -5
  workhorse exec 'git log --oneline -5'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportError(cmd, cmd.OutOrStdout(), runExec(cmd, spec, args))
		},
	}

	cmd.Flags().StringVarP(&spec.WorkingDirectory, "dir", "C", "", "working directory (default: current directory)")
	cmd.Flags().StringToStringVarP(&spec.Environment, "env", "e", nil, "extra environment variable KEY=VALUE (repeatable)")

	parent.AddCommand(cmd)
}

func runExec(cmd *cobra.Command, spec domain.CommandSpec, args []string) error {
	ctx := cmd.Context()

	argv, err := commandLine(args)
	if err != nil {
		return err
	}
	spec.Command, spec.Args = argv[0], argv[1:]

	if spec.WorkingDirectory == "" {
		if spec.WorkingDirectory, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	terminals := terminal.NewManager(a.cfg.Terminal)
	defer func() { _ = terminals.Shutdown(ctx) }()

	out, err := terminals.ExecuteCommand(ctx, spec)
	if err != nil {
		return err
	}

	failed := out.OutputType == constants.OutputStderr

	if outputFormat(cmd) == OutputJSON {
		if err := tui.NewOutput(cmd.OutOrStdout(), OutputJSON).JSON(out); err != nil {
			return err
		}
		if failed {
			return fmt.Errorf("%w: '%s': %w", errors.ErrJSONErrorOutput, spec.Command, errors.ErrCommandFailed)
		}
		return nil
	}

	w := cmd.OutOrStdout()
	if failed {
		w = cmd.ErrOrStderr()
	}
	_, _ = io.WriteString(w, out.Content)

	if failed {
		return fmt.Errorf("'%s': %w", spec.Command, errors.ErrCommandFailed)
	}
	return nil
}

// commandLine returns the argv to run. A single argument holding spaces is
// split with shell quoting rules.
func commandLine(args []string) ([]string, error) {
	if len(args) != 1 || !strings.ContainsAny(args[0], " \t") {
		return args, nil
	}
	argv, err := shellquote.Split(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse command line: %w: %w", errors.ErrInvalidArgument, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command: %w", errors.ErrEmptyValue)
	}
	return argv, nil
}
