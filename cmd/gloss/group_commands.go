package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage lecture groups inside a course",
	}

	groupCmd.AddCommand(newGroupAddCommand(ctx))
	groupCmd.AddCommand(newGroupListCommand(ctx))
	groupCmd.AddCommand(newGroupRenameCommand(ctx))
	groupCmd.AddCommand(newGroupRemoveCommand(ctx))

	return groupCmd
}

func newGroupAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <course> <name>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				group, err := api.GroupAdd(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, group)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added group %q (id %d)\n", group.Name, group.ID)
				return nil
			})
		},
	}
}

func newGroupListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <course>",
		Short: "List groups for a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				groups, err := api.GroupList(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, groups)
				}
				rows := buildGroupRows(groups)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No groups yet")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Name", "Slug"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newGroupRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <course> <group> <name>",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				group, err := api.GroupRename(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, group)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed group to %q\n", group.Name)
				return nil
			})
		},
	}
}

func newGroupRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <course> <group>",
		Short: "Remove a group, leaving its lectures ungrouped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				if err := api.GroupRemove(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed group %s\n", args[1])
				return nil
			})
		},
	}
}
