package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// AddWorkspaceCommand adds the workspace command tree to the root command.
func AddWorkspaceCommand(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
		Long: `A workspace is a git worktree of a registered repository with a durable
record: status, tags, custom fields and timestamps.

Commands act on the repository given by --repo, or on the repository that
contains the working directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	addWorkspaceCreateCmd(cmd, flags)
	addWorkspaceListCmd(cmd, flags)
	addWorkspaceFindCmd(cmd, flags)
	addWorkspaceShowCmd(cmd, flags)
	addWorkspaceArchiveCmd(cmd, flags)
	addWorkspaceRestoreCmd(cmd, flags)
	addWorkspaceDeleteCmd(cmd, flags)
	addWorkspaceReconcileCmd(cmd, flags)
	addWorkspaceAccessCmd(cmd, flags)
	addWorkspaceTagCmd(cmd, flags)
	addWorkspaceFieldCmd(cmd, flags)
	addWorkspaceCleanupCmd(cmd, flags)
	addWorkspaceStatsCmd(cmd, flags)

	parent.AddCommand(cmd)
}

// workspaceRun is the body of a workspace subcommand.
type workspaceRun func(ctx context.Context, a *app, repo string, out tui.Output) error

// runWorkspace opens the app, resolves the repository and runs fn. Errors
// are reported in the selected output format.
func runWorkspace(cmd *cobra.Command, flags *GlobalFlags, fn workspaceRun) error {
	w := cmd.OutOrStdout()
	return reportError(cmd, w, func() error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		repo, err := a.resolveRepo(ctx, flags.Repo)
		if err != nil {
			return err
		}
		return fn(ctx, a, repo, tui.NewOutput(w, outputFormat(cmd)))
	}())
}

func addWorkspaceCreateCmd(parent *cobra.Command, flags *GlobalFlags) {
	var req domain.CreateWorkspaceRequest

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace backed by a new worktree",
		Long: `Create a worktree named after the workspace and record it.

Without --branch a new branch named after the worktree is created.

Examples:
  workhorse workspace create auth-refactor
  workhorse workspace create hotfix --branch release/1.4 --tag urgent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.Create(ctx, repo, req)
				if err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(meta)
				}
				out.Success(fmt.Sprintf("Created workspace '%s' at %s", meta.Name, meta.WorkspacePath))
				out.Info("id: " + meta.ID + "  branch: " + meta.Branch)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Branch, "branch", "b", "", "branch to check out (created from HEAD when missing)")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "free-form description")
	cmd.Flags().StringSliceVarP(&req.Tags, "tag", "t", nil, "tag to attach (repeatable)")
	cmd.Flags().StringVar(&req.BasePath, "base-path", "", "directory the worktree is created in")

	parent.AddCommand(cmd)
}

func addWorkspaceListCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workspaces, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				list, err := a.workspaces.List(ctx, repo)
				if err != nil {
					return err
				}
				return printWorkspaces(cmd, out, list)
			})
		},
	}
	parent.AddCommand(cmd)
}

func addWorkspaceFindCmd(parent *cobra.Command, flags *GlobalFlags) {
	var (
		tag    string
		status string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find workspaces by tag or status",
		Long: `Find workspaces carrying a tag, in a status, or both.

Examples:
  workhorse workspace find --tag urgent
  workhorse workspace find --status broken`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				var (
					list []*domain.WorkspaceMetadata
					err  error
				)
				if status != "" {
					list, err = a.workspaces.FindByStatus(ctx, repo, constants.WorkspaceStatus(status))
				} else {
					list, err = a.workspaces.FindByTag(ctx, repo, tag)
				}
				if err != nil {
					return err
				}
				if tag != "" && status != "" {
					list = slices.DeleteFunc(list, func(m *domain.WorkspaceMetadata) bool {
						return !slices.Contains(m.Tags, tag)
					})
				}
				return printWorkspaces(cmd, out, list)
			})
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "tag to match")
	cmd.Flags().StringVar(&status, "status", "", "status to match (active|inactive|archived|broken)")
	cmd.MarkFlagsOneRequired("tag", "status")

	parent.AddCommand(cmd)
}

func addWorkspaceShowCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a workspace with the live state of its worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				info, err := a.workspaces.Info(ctx, repo, args[0])
				if err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(info)
				}
				printWorkspaceInfo(cmd.OutOrStdout(), info)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

func addWorkspaceStatsCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workspace counts by status, branch and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				stats, err := a.workspaces.Statistics(ctx, repo)
				if err != nil {
					return err
				}
				if outputFormat(cmd) == OutputJSON {
					return out.JSON(stats)
				}
				printStatistics(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
	parent.AddCommand(cmd)
}

// printWorkspaces writes a list as a table, or as a JSON array.
func printWorkspaces(cmd *cobra.Command, out tui.Output, list []*domain.WorkspaceMetadata) error {
	if outputFormat(cmd) == OutputJSON {
		if list == nil {
			list = []*domain.WorkspaceMetadata{}
		}
		return out.JSON(list)
	}
	if len(list) == 0 {
		out.Info("No workspaces. Run 'workhorse workspace create <name>' to create one.")
		return nil
	}

	tbl := tui.NewTable("id", "name", "branch", "status", "tags", "created").
		MaxWidth(0, 8).
		MaxWidth(1, 24).
		MaxWidth(2, 30)
	for _, m := range list {
		status := tui.StatusCell(tui.WorkspaceStatusIcon(m.Status), m.Status.String(), tui.WorkspaceStatusColor(m.Status))
		tbl.AddRow(m.ID, m.Name, m.Branch, status, strings.Join(m.Tags, ","), tui.RelativeTime(m.CreatedAt))
	}
	out.Table(tbl)
	return nil
}

func printWorkspaceInfo(w io.Writer, info *domain.WorkspaceInfo) {
	m := info.Metadata
	line := func(label, value string) {
		_, _ = fmt.Fprintf(w, "%s %s\n", tui.StyleBold.Render(fmt.Sprintf("%-12s", label+":")), value)
	}

	line("ID", m.ID)
	line("Name", m.Name)
	line("Status", tui.StatusCell(tui.WorkspaceStatusIcon(m.Status), m.Status.String(), tui.WorkspaceStatusColor(m.Status)))
	line("Path", m.WorkspacePath)
	line("Branch", m.Branch)
	if m.Description != "" {
		line("Description", m.Description)
	}
	line("Created", tui.RelativeTime(m.CreatedAt))
	if m.LastAccessedAt != nil {
		line("Accessed", tui.RelativeTime(*m.LastAccessedAt))
	}
	if len(m.Tags) > 0 {
		line("Tags", strings.Join(m.Tags, ", "))
	}
	for _, k := range slices.Sorted(maps.Keys(m.CustomFields)) {
		line(k, m.CustomFields[k])
	}

	switch {
	case !info.PathExists:
		line("Worktree", tui.StyleDim.Render("missing"))
	case info.GitStatus != nil:
		gs := info.GitStatus
		state := "clean"
		if gs.Dirty {
			state = fmt.Sprintf("%d changed files", gs.Files)
		}
		line("Worktree", fmt.Sprintf("%s, %s, ahead %d, behind %d", gs.Branch, state, gs.Ahead, gs.Behind))
	default:
		line("Worktree", tui.StyleDim.Render("not a git worktree"))
	}
}

func printStatistics(w io.Writer, stats *domain.WorkspaceStatistics) {
	_, _ = fmt.Fprintf(w, "%s %d\n", tui.StyleBold.Render("Total:"), stats.TotalCount)

	section := func(title string, counts map[string]int) {
		if len(counts) == 0 {
			return
		}
		_, _ = fmt.Fprintln(w)
		tbl := tui.NewTable(title, "count")
		for _, k := range slices.Sorted(maps.Keys(counts)) {
			tbl.AddRow(k, fmt.Sprint(counts[k]))
		}
		tbl.Render(w)
	}
	section("status", stats.StatusCounts)
	section("branch", stats.BranchCounts)
	section("tag", stats.TagCounts)
}
