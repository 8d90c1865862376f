package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderDKai/workhorse/internal/errors"
)

// bindCmd returns a command whose RunE binds the global flags, the way the
// root command's PersistentPreRunE does.
func bindCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return BindGlobalFlags(viper.New(), cmd)
		},
	}
	AddGlobalFlags(cmd, flags)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	for name, short := range map[string]string{"output": "o", "verbose": "v", "quiet": "q", "repo": "r"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, short, f.Shorthand, name)
	}
	assert.Equal(t, OutputText, flags.Output)
	assert.Empty(t, flags.Repo)
}

func TestBindGlobalFlags_Environment(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		want    GlobalFlags
		wantErr error
	}{
		{
			name: "defaults without environment",
			want: GlobalFlags{Output: OutputText},
		},
		{
			name: "output from environment",
			env:  map[string]string{"WORKHORSE_OUTPUT": "json"},
			want: GlobalFlags{Output: OutputJSON},
		},
		{
			name: "flag beats environment",
			env:  map[string]string{"WORKHORSE_OUTPUT": "json", "WORKHORSE_REPO": "env-repo"},
			args: []string{"-o", "text", "--repo", "flag-repo"},
			want: GlobalFlags{Output: OutputText, Repo: "flag-repo"},
		},
		{
			name: "repository from environment",
			env:  map[string]string{"WORKHORSE_REPO": "/src/backend"},
			want: GlobalFlags{Output: OutputText, Repo: "/src/backend"},
		},
		{
			name: "verbose from environment",
			env:  map[string]string{"WORKHORSE_VERBOSE": "1"},
			want: GlobalFlags{Output: OutputText, Verbose: true},
		},
		{
			name: "quiet on the command line suppresses verbose from environment",
			env:  map[string]string{"WORKHORSE_VERBOSE": "true"},
			args: []string{"-q"},
			want: GlobalFlags{Output: OutputText, Quiet: true},
		},
		{
			name:    "malformed boolean",
			env:     map[string]string{"WORKHORSE_QUIET": "sometimes"},
			wantErr: errors.ErrInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"WORKHORSE_OUTPUT", "WORKHORSE_VERBOSE", "WORKHORSE_QUIET", "WORKHORSE_REPO"} {
				t.Setenv(k, tc.env[k])
			}

			flags := &GlobalFlags{}
			cmd := bindCmd(flags)
			cmd.SetArgs(tc.args)
			err := cmd.Execute()

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, *flags)
		})
	}
}

func TestBindGlobalFlags_ExposesFlagsToViper(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.PersistentFlags().Set("repo", "app"))
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, "app", v.GetString("repo"))
}

//nolint:err113 // Test cases use dynamic errors to simulate cobra messages
func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unsafe script", fmt.Errorf("create: %w", errors.ErrUnsafeScript), ExitInvalidInput},
		{"not a git repository", errors.ErrNotGitRepo, ExitInvalidInput},
		{"unmanaged repository", errors.ErrRepositoryNotManaged, ExitInvalidInput},
		{"needs --force", errors.ErrNonInteractiveMode, ExitInvalidInput},
		{"bad output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"explicit exit code 2", errors.NewExitCode2Error(stderrors.New("bad input")), ExitInvalidInput},
		{"validation reported as JSON", fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrScriptTooLarge), ExitInvalidInput},
		{"cobra arg count", stderrors.New("accepts 1 arg(s), received 0"), ExitInvalidInput},
		{"cobra flag group", stderrors.New("at least one of the flags in the group [tag status] is required"), ExitInvalidInput},
		{"not found", fmt.Errorf("get: %w", errors.ErrWorkspaceNotFound), ExitError},
		{"conflict", errors.ErrWorkspaceAlreadyArchived, ExitError},
		{"cap reached", errors.ErrScriptCapReached, ExitError},
		{"canceled", context.Canceled, ExitError},
		{"failed command reported as JSON", fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrCommandFailed), ExitError},
		{"storage failure", stderrors.New("disk on fire"), ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	newCmd := func(format string) *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		AddGlobalFlags(cmd, &GlobalFlags{})
		require.NoError(t, cmd.PersistentFlags().Set("output", format))
		return cmd
	}

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, reportError(newCmd(OutputJSON), &bytes.Buffer{}, nil))
	})

	t.Run("text leaves the error to cobra", func(t *testing.T) {
		t.Parallel()
		cmd := newCmd(OutputText)
		var buf bytes.Buffer

		err := reportError(cmd, &buf, errors.ErrWorkspaceNotFound)
		require.ErrorIs(t, err, errors.ErrWorkspaceNotFound)
		assert.NotErrorIs(t, err, errors.ErrJSONErrorOutput)
		assert.Empty(t, buf.String())
		assert.False(t, cmd.SilenceErrors)
	})

	t.Run("json writes the failure and silences cobra", func(t *testing.T) {
		t.Parallel()
		cmd := newCmd(OutputJSON)
		var buf bytes.Buffer

		err := reportError(cmd, &buf, fmt.Errorf("show: %w", errors.ErrWorkspaceNotFound))
		require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
		require.ErrorIs(t, err, errors.ErrWorkspaceNotFound)
		assert.True(t, cmd.SilenceErrors)

		failure := decodeJSON[map[string]any](t, buf.String())
		assert.Equal(t, "error", failure["type"])
		assert.Equal(t, string(errors.KindNotFound), failure["kind"])
	})

	t.Run("already reported errors are not written twice", func(t *testing.T) {
		t.Parallel()
		cmd := newCmd(OutputJSON)
		var buf bytes.Buffer

		reported := fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, errors.ErrCommandFailed)
		err := reportError(cmd, &buf, reported)
		require.ErrorIs(t, err, errors.ErrCommandFailed)
		assert.Empty(t, buf.String())
		assert.True(t, cmd.SilenceErrors)
	})
}

func TestIsInvalidInputError(t *testing.T) {
	t.Parallel()

	assert.True(t, isInvalidInputError(`unknown command "frob" for "workhorse workspace"`))
	assert.True(t, isInvalidInputError("requires at least 1 arg(s), only received 0"))
	assert.True(t, isInvalidInputError("if any flags in the group [name file] are set none of the others can be; [file name] were all set"))
	assert.False(t, isInvalidInputError("workspace not found"))
	assert.False(t, isInvalidInputError(""))
}
