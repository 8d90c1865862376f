package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CoderDKai/workhorse/internal/tui"
)

func addWorkspaceTagCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove workspace tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <tag>",
		Short: "Add a tag; adding a present tag does nothing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.AddTag(ctx, repo, args[0], args[1])
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Tagged '%s' with '%s'", meta.Name, args[1]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id> <tag>",
		Aliases: []string{"remove"},
		Short:   "Remove a tag; removing an absent tag does nothing",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.RemoveTag(ctx, repo, args[0], args[1])
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Removed tag '%s' from '%s'", args[1], meta.Name))
			})
		},
	})

	parent.AddCommand(cmd)
}

func addWorkspaceFieldCmd(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Set or remove custom fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <key> <value>",
		Short: "Set a custom field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.SetCustomField(ctx, repo, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Set %s=%s on '%s'", args[1], args[2], meta.Name))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id> <key>",
		Aliases: []string{"remove"},
		Short:   "Remove a custom field",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(cmd, flags, func(ctx context.Context, a *app, repo string, out tui.Output) error {
				meta, err := a.workspaces.RemoveCustomField(ctx, repo, args[0], args[1])
				if err != nil {
					return err
				}
				return printResult(cmd, out, meta, fmt.Sprintf("Removed %s from '%s'", args[1], meta.Name))
			})
		},
	})

	parent.AddCommand(cmd)
}
