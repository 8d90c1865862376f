package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/repository"
	"github.com/CoderDKai/workhorse/internal/tui"
)

// AddRepoCommand adds the repo command tree to the root command.
func AddRepoCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Register and unregister repositories",
		Long: `A repository must be registered before workspaces can be created in it.
Registering creates the .workhorse management folder inside the repository.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	addRepoAddCmd(cmd)
	addRepoListCmd(cmd)
	addRepoRemoveCmd(cmd)

	parent.AddCommand(cmd)
}

func addRepoAddCmd(parent *cobra.Command) {
	var req repository.AddRequest

	cmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Register a git repository",
		Long: `Register the git repository at path (default: the current directory).

Examples:
  workhorse repo add
  workhorse repo add ~/src/app --name app --default-branch main`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Path = "."
			if len(args) == 1 {
				req.Path = args[0]
			}
			return reportError(cmd, cmd.OutOrStdout(), runRepoAdd(cmd, cmd.OutOrStdout(), req))
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name (default: directory name)")
	cmd.Flags().StringVar(&req.DefaultBranch, "default-branch", "", "branch new workspaces start from")
	cmd.Flags().BoolVar(&req.AutoPrune, "auto-prune", false, "prune stale worktrees automatically")

	parent.AddCommand(cmd)
}

func runRepoAdd(cmd *cobra.Command, w io.Writer, req repository.AddRequest) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.repos.Add(ctx, req)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, outputFormat(cmd))
	if outputFormat(cmd) == OutputJSON {
		return out.JSON(rec)
	}
	out.Success("Registered repository '" + rec.Name + "' (" + rec.ID + ")")
	return nil
}

func addRepoListCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered repositories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reportError(cmd, cmd.OutOrStdout(), runRepoList(cmd, cmd.OutOrStdout()))
		},
	}
	parent.AddCommand(cmd)
}

func runRepoList(cmd *cobra.Command, w io.Writer) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.repos.List(ctx)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, outputFormat(cmd))
	if outputFormat(cmd) == OutputJSON {
		if list == nil {
			list = []*domain.RepositoryRecord{}
		}
		return out.JSON(list)
	}
	if len(list) == 0 {
		out.Info("No repositories. Run 'workhorse repo add' inside a git repository.")
		return nil
	}

	tbl := tui.NewTable("id", "name", "path", "added").MaxWidth(0, 8)
	for _, rec := range list {
		tbl.AddRow(rec.ID, rec.Name, rec.Path, tui.RelativeTime(rec.CreatedAt))
	}
	out.Table(tbl)
	return nil
}

func addRepoRemoveCmd(parent *cobra.Command) {
	var purge bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Unregister a repository",
		Long: `Unregister a repository. Worktrees are left in place. With --purge the
.workhorse folder, including all workspace records, is deleted too.`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportError(cmd, cmd.OutOrStdout(), runRepoRemove(cmd, cmd.OutOrStdout(), args[0], purge))
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "also delete the .workhorse folder")

	parent.AddCommand(cmd)
}

func runRepoRemove(cmd *cobra.Command, w io.Writer, ref string, purge bool) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.repos.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.repos.Remove(ctx, rec.ID, purge); err != nil {
		return err
	}

	out := tui.NewOutput(w, outputFormat(cmd))
	if outputFormat(cmd) == OutputJSON {
		return out.JSON(map[string]string{"removed": rec.ID})
	}
	out.Success("Removed repository '" + rec.Name + "'")
	return nil
}
