package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// confirmDelete asks before a workspace is deleted. Tests replace it.
//
//nolint:gochecknoglobals // Required for test injection of the prompt
var confirmDelete = func(name string) (bool, error) {
	return tui.Confirm(fmt.Sprintf("Delete workspace '%s'?", name), "The worktree and its files are removed. This cannot be undone.", "Yes, delete")
}

func addWorkspaceArchiveCmd(parent *cobra.Command, flags *GlobalFlags) {
	var req domain.ArchiveWorkspaceRequest

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a workspace",
		Long: `Mark a workspace archived. Unless --keep-files is given the worktree and its
directory are removed; 'workspace restore' recreates them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.WorkspaceID = args[0]
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.Archive(ctx, repo, req)
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Archived workspace '%s'", meta.Name))
			})
		},
	}

	cmd.Flags().BoolVar(&req.KeepFiles, "keep-files", false, "keep the worktree on disk")
	cmd.Flags().StringVar(&req.ArchiveReason, "reason", "", "why the workspace is archived")

	parent.AddCommand(cmd)
}

func addWorkspaceRestoreCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore an archived workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.Restore(ctx, repo, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Restored workspace '%s' at %s", meta.Name, meta.WorkspacePath))
			})
		},
	}
	parent.AddCommand(cmd)
}

func addWorkspaceDeleteCmd(parent *cobra.Command, flags *GlobalFlags) {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workspace, its worktree and its record",
		Long: `Delete a workspace completely. Asks for confirmation unless --force is given;
without a terminal --force is required.`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.Get(ctx, repo, args[0])
				if err != nil {
					return err
				}

				if !force {
					if !terminalCheck() || outputFormat(cmd) == OutputJSON {
						return errors.ErrNonInteractiveMode
					}
					ok, err := confirmDelete(meta.Name)
					if err != nil {
						return err
					}
					if !ok {
						out.Info("Canceled")
						return nil
					}
				}

				if err := a.workspaces.Delete(ctx, repo, meta.ID); err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(map[string]string{"removed": meta.ID})
				}
				out.Success(fmt.Sprintf("Deleted workspace '%s'", meta.Name))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	parent.AddCommand(cmd)
}

func addWorkspaceReconcileCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "reconcile [id]",
		Short: "Recompute workspace status from the filesystem",
		Long: `Check that each workspace directory still exists and is a git worktree, and
mark it active or broken accordingly. Archived workspaces are left alone.
Without an id every workspace is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				statuses := map[string]string{}
				if len(args) == 1 {
					status, err := a.workspaces.ReconcileStatus(ctx, repo, args[0])
					if err != nil {
						return err
					}
					statuses[args[0]] = status.String()
				} else {
					all, err := a.workspaces.ReconcileAll(ctx, repo)
					if err != nil {
						return err
					}
					for id, status := range all {
						statuses[id] = status.String()
					}
				}

				if outputFormat(cmd) == OutputJSON {
					return out.JSON(statuses)
				}
				tbl := tui.NewTable("id", "status")
				for _, id := range slices.Sorted(maps.Keys(statuses)) {
					tbl.AddRow(id, statuses[id])
				}
				out.Table(tbl)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addWorkspaceAccessCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "access <id>",
		Short: "Record that a workspace was used and print its path",
		Long: `Bump the last-accessed time of a workspace and print its path, e.g.

  cd "$(workhorse workspace access 3f2a)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.Access(ctx, repo, args[0])
				if err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(meta)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), meta.WorkspacePath)
				return err
			})
		},
	}
	parent.AddCommand(cmd)
}

func addWorkspaceCleanupCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete every broken workspace",
		Long: `Delete every workspace currently marked broken. Run 'workspace reconcile'
first to pick up directories removed behind workhorse's back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				removed, err := a.workspaces.CleanupBroken(ctx, repo)
				if err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(map[string][]string{"removed": removed})
				}
				if len(removed) == 0 {
					out.Info("No broken workspaces")
					return nil
				}
				out.Success(fmt.Sprintf("Removed %d broken workspace(s)", len(removed)))
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

// printResult writes meta as JSON or a success line.
func printResult(cmd *cobra.Command, out tui.Output, meta *domain.WorkspaceMetadata, msg string) error {
	if outputFormat(cmd) == OutputJSON {
		return out.JSON(meta)
	}
	out.Success(msg)
	return nil
}
