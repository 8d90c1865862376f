package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/CoderDKai/workhorse/internal/config"
	"github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
	"github.com/CoderDKai/workhorse/internal/repository"
	"github.com/CoderDKai/workhorse/internal/tui"
	"github.com/CoderDKai/workhorse/internal/workspace"
)

// terminalCheck reports whether stdin is a terminal. Tests replace it.
//
//nolint:gochecknoglobals // Required for test injection
var terminalCheck = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// app wires the services one command needs. Close releases the registry.
type app struct {
	cfg        *config.Config
	vcs        git.VersionControl
	registry   *repository.Registry
	repos      *repository.Manager
	workspaces *workspace.DefaultManager
}

// openApp loads configuration for the repository in the working directory,
// if any, and opens the registry.
func openApp(ctx context.Context) (*app, error) {
	vcs := git.NewCLI()

	cfg, err := config.Load(ctx, currentRepoRoot(ctx, vcs))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	path, err := cfg.RegistryPath()
	if err != nil {
		return nil, err
	}
	registry, err := repository.OpenRegistry(ctx, path)
	if err != nil {
		return nil, err
	}

	repos := repository.NewManager(vcs, registry)
	return &app{
		cfg:      cfg,
		vcs:      vcs,
		registry: registry,
		repos:    repos,
		workspaces: workspace.NewManager(workspace.NewFileStore(), vcs, repos,
			workspace.WithBasePath(cfg.Workspace.BaseDir),
			workspace.WithReconcileWorkers(cfg.Workspace.ReconcileWorkers),
		),
	}, nil
}

func (a *app) Close() {
	if err := a.registry.Close(); err != nil {
		logger := GetLogger()
		logger.Warn().Err(err).Msg("failed to close registry")
	}
}

// resolveRepo returns the path of the repository selected by --repo, or of
// the repository containing the working directory. The repository must be
// registered.
func (a *app) resolveRepo(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		ref = currentRepoRoot(ctx, a.vcs)
		if ref == "" {
			return "", fmt.Errorf("no --repo given and the working directory is not inside a git repository: %w", errors.ErrNotGitRepo)
		}
	}
	rec, err := a.repos.Resolve(ctx, ref)
	if err != nil {
		if stderrors.Is(err, errors.ErrRepositoryNotFound) {
			return "", fmt.Errorf("repository '%s': %w", ref, errors.ErrRepositoryNotManaged)
		}
		return "", err
	}
	return rec.Path, nil
}

// currentRepoRoot returns the top level of the repository containing the
// working directory, or "" when there is none.
func currentRepoRoot(ctx context.Context, vcs git.VersionControl) string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	repo, err := vcs.Open(ctx, cwd)
	if err != nil {
		return ""
	}
	return repo.TopLevel
}

// outputFormat reads the global --output flag.
func outputFormat(cmd *cobra.Command) string {
	if f := cmd.Flag("output"); f != nil {
		return f.Value.String()
	}
	return OutputText
}

// reportError prints err in the selected format. With JSON output the
// error is written to w and ErrJSONErrorOutput is returned so cobra does
// not print it a second time; the command still fails. Errors already
// wrapping ErrJSONErrorOutput were reported by the command itself.
func reportError(cmd *cobra.Command, w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, errors.ErrJSONErrorOutput) {
		cmd.SilenceErrors = true
		return err
	}
	if outputFormat(cmd) != OutputJSON {
		return err
	}
	tui.NewJSONOutput(w).Error(err)
	cmd.SilenceErrors = true
	return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, err)
}
