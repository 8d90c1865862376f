package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/script"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// scriptRunOptions holds the flags of 'script run'.
type scriptRunOptions struct {
	name string
	file string
	dir  string
	env  map[string]string
}

// AddScriptCommand adds the script command tree to the root command.
func AddScriptCommand(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Run shell scripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	addScriptRunCmd(cmd, flags)

	parent.AddCommand(cmd)
}

func addScriptRunCmd(parent *cobra.Command, flags *GlobalFlags) {
	opts := &scriptRunOptions{}

	cmd := &cobra.Command{
		Use:   "run [--name N | --file F | -- content]",
		Short: "Run a script and wait for it to finish",
		Long: `Run a script with the configured shell and wait for it to finish.

The script is either a named script from the repository's .workhorse
config (--name), the contents of a file (--file), or the arguments after --.
Scripts matching the deny-list are refused before anything runs.

Examples:
  workhorse script run --name test
  workhorse script run --file ./ci.sh --dir ./backend
  workhorse script run --env STAGE=dev -- 'echo "$STAGE"'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportError(cmd, cmd.OutOrStdout(), runScript(cmd, flags, opts, args))
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "named script from the repository config")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file holding the script")
	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "working directory (default: current directory)")
	cmd.Flags().StringToStringVarP(&opts.env, "env", "e", nil, "extra environment variable KEY=VALUE (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("name", "file")

	parent.AddCommand(cmd)
}

func runScript(cmd *cobra.Command, flags *GlobalFlags, opts *scriptRunOptions, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := script.NewEngine(a.cfg.Script)

	var (
		rec *domain.ScriptExecution
		res *domain.ExecutionResult
	)
	if opts.name != "" {
		if len(args) > 0 || opts.dir != "" || len(opts.env) > 0 {
			return fmt.Errorf("--name takes no content, --dir or --env: %w", errors.ErrInvalidArgument)
		}
		repo, err := a.resolveRepo(ctx, flags.Repo)
		if err != nil {
			return err
		}
		rec, res, err = engine.RunNamed(ctx, repo, opts.name)
		if err != nil {
			return err
		}
	} else {
		content, err := scriptContent(opts.file, args)
		if err != nil {
			return err
		}
		dir := opts.dir
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}
		rec, err = engine.CreateExecution(ctx, content, dir, opts.env)
		if err != nil {
			return err
		}
		res, err = engine.Execute(ctx, rec.ID)
		if err != nil {
			return err
		}
		if rec, err = engine.Get(ctx, rec.ID); err != nil {
			return err
		}
	}

	if outputFormat(cmd) != OutputJSON {
		printScriptResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), res)
		if !res.Success {
			return scriptFailure(res)
		}
		return nil
	}

	if err := tui.NewOutput(cmd.OutOrStdout(), OutputJSON).JSON(struct {
		Execution *domain.ScriptExecution `json:"execution"`
		Result    *domain.ExecutionResult `json:"result"`
	}{rec, res}); err != nil {
		return err
	}
	if !res.Success {
		// The result document already carries the failure.
		return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, scriptFailure(res))
	}
	return nil
}

// scriptContent reads the script from file, or joins args.
func scriptContent(file string, args []string) (string, error) {
	if file != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("--file takes no inline content: %w", errors.ErrInvalidArgument)
		}
		data, err := os.ReadFile(file) //nolint:gosec // Path comes from the user
		if err != nil {
			return "", fmt.Errorf("failed to read script file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("script content (use --name, --file or -- content): %w", errors.ErrEmptyValue)
	}
	return strings.Join(args, " "), nil
}

func printScriptResult(stdout, stderr io.Writer, res *domain.ExecutionResult) {
	_, _ = io.WriteString(stdout, res.Stdout)
	_, _ = io.WriteString(stderr, res.Stderr)

	status := tui.StatusCell("✓", "succeeded", tui.ColorSuccess)
	if !res.Success {
		status = tui.StatusCell("✗", "failed", tui.ColorError)
	}
	code := "-"
	if res.ExitCode != nil {
		code = fmt.Sprint(*res.ExitCode)
	}
	_, _ = fmt.Fprintf(stderr, "%s %s\n", status,
		tui.StyleDim.Render(fmt.Sprintf("(exit %s, %s)", code, tui.Duration(res.DurationMs))))
}

func scriptFailure(res *domain.ExecutionResult) error {
	if res.ExitCode != nil {
		return fmt.Errorf("script exited with code %d: %w", *res.ExitCode, errors.ErrCommandFailed)
	}
	return fmt.Errorf("script %s: %w", res.ID, errors.ErrCommandFailed)
}
