package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCourseCommand(ctx *commandContext) *cobra.Command {
	courseCmd := &cobra.Command{
		Use:   "course",
		Short: "Manage courses",
	}

	courseCmd.AddCommand(newCourseAddCommand(ctx))
	courseCmd.AddCommand(newCourseListCommand(ctx))
	courseCmd.AddCommand(newCourseRenameCommand(ctx))
	courseCmd.AddCommand(newCourseReorderCommand(ctx))
	courseCmd.AddCommand(newCourseRemoveCommand(ctx))

	return courseCmd
}

func newCourseAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				course, err := api.CourseAdd(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, course)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added course %q (id %d)\n", course.Name, course.ID)
				return nil
			})
		},
	}
}

func newCourseListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courses in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				courses, err := api.CourseList(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, courses)
				}
				rows := buildCourseRows(courses)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No courses yet")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Name", "Slug", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newCourseRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <course> <name>",
		Short: "Rename a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				course, err := api.CourseRename(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, course)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed course to %q\n", course.Name)
				return nil
			})
		},
	}
}

func newCourseReorderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <course> <position>",
		Short: "Move a course to a new display position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return ctx.withAPI(func(api glossAPI) error {
				courses, err := api.CourseReorder(cmd.Context(), args[0], position)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, courses)
				}
				table := renderTable(
					[]string{"ID", "Name", "Slug", "Created"},
					buildCourseRows(courses),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newCourseRemoveCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <course>",
		Short: "Remove a course and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				if !force {
					lectures, err := api.LectureList(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if len(lectures) > 0 {
						return fmt.Errorf("course %q still has %d lectures; pass --force to remove them too", args[0], len(lectures))
					}
				}
				if err := api.CourseRemove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed course %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove the course even when it still has lectures")
	return cmd
}
