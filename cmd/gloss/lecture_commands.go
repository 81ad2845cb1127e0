package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gloss/internal/api"
)

func newLectureCommand(ctx *commandContext) *cobra.Command {
	lectureCmd := &cobra.Command{
		Use:   "lecture",
		Short: "Manage lectures and their slide decks",
	}

	lectureCmd.AddCommand(newLectureAddCommand(ctx))
	lectureCmd.AddCommand(newLectureListCommand(ctx))
	lectureCmd.AddCommand(newLectureShowCommand(ctx))
	lectureCmd.AddCommand(newLectureRenameCommand(ctx))
	lectureCmd.AddCommand(newLectureMoveCommand(ctx))
	lectureCmd.AddCommand(newLectureDeckCommand(ctx))
	lectureCmd.AddCommand(newLectureRemoveCommand(ctx))

	return lectureCmd
}

func newLectureAddCommand(ctx *commandContext) *cobra.Command {
	var groupRef string
	var deckPath string

	cmd := &cobra.Command{
		Use:   "add <course> <title>",
		Short: "Create a lecture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				lecture, err := api.LectureAdd(cmd.Context(), args[0], args[1], groupRef, deckPath)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lecture)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added lecture %q (id %d)\n", lecture.Title, lecture.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&groupRef, "group", "g", "", "Group to file the lecture under")
	cmd.Flags().StringVarP(&deckPath, "deck", "d", "", "PDF slide deck to attach")
	return cmd
}

func newLectureListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <course>",
		Short: "List lectures for a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				lectures, err := api.LectureList(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lectures)
				}
				if len(lectures) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No lectures yet")
					return nil
				}
				names, err := groupNamesForCourse(cmd.Context(), api, args[0])
				if err != nil {
					return err
				}
				table := renderTable(
					[]string{"ID", "Title", "Group", "Status", "Deck", "Updated"},
					buildLectureRows(lectures, names),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newLectureShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <lecture>",
		Short: "Show a lecture with its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				detail, err := api.LectureShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, detail)
				}
				printLectureDetail(cmd, api, detail)
				return nil
			})
		},
	}
}

func newLectureRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <lecture> <title>",
		Short: "Retitle a lecture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				lecture, err := api.LectureRename(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lecture)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed lecture to %q\n", lecture.Title)
				return nil
			})
		},
	}
}

func newLectureMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <lecture> [group]",
		Short: "Move a lecture into a group, or ungroup it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupRef := ""
			if len(args) > 1 {
				groupRef = args[1]
			}
			return ctx.withAPI(func(api glossAPI) error {
				lecture, err := api.LectureMove(cmd.Context(), args[0], groupRef)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lecture)
				}
				if lecture.GroupID == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Ungrouped lecture %q\n", lecture.Title)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Moved lecture %q to group %s\n", lecture.Title, groupRef)
				}
				return nil
			})
		},
	}
}

func newLectureDeckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deck <lecture> <path>",
		Short: "Attach or replace a lecture's PDF slide deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				lecture, err := api.LectureAttachDeck(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lecture)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Attached deck %s\n", formatDeck(*lecture))
				return nil
			})
		},
	}
}

func newLectureRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <lecture>",
		Short: "Remove a lecture with its notes and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				if err := api.LectureRemove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed lecture %s\n", args[0])
				return nil
			})
		},
	}
}

func groupNamesForCourse(ctx context.Context, api glossAPI, courseRef string) (map[int64]string, error) {
	groups, err := api.GroupList(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(groups))
	for _, group := range groups {
		names[group.ID] = group.Name
	}
	return names, nil
}

func printLectureDetail(cmd *cobra.Command, client glossAPI, detail *api.LectureDetail) {
	out := cmd.OutOrStdout()
	lecture := detail.Lecture

	fmt.Fprintf(out, "Title:    %s\n", lecture.Title)
	fmt.Fprintf(out, "Course:   %d\n", lecture.CourseID)
	if lecture.GroupID != nil {
		name := fmt.Sprintf("%d", *lecture.GroupID)
		if names, err := groupNamesForCourse(cmd.Context(), client, fmt.Sprintf("%d", lecture.CourseID)); err == nil {
			if resolved, ok := names[*lecture.GroupID]; ok {
				name = resolved
			}
		}
		fmt.Fprintf(out, "Group:    %s\n", name)
	}
	fmt.Fprintf(out, "Status:   %s\n", formatStatusLabel(lecture.Status))
	if progress := formatProgress(lecture.Progress); progress != "" {
		fmt.Fprintf(out, "Progress: %s\n", progress)
	}
	if msg := strings.TrimSpace(lecture.ErrorMessage); msg != "" {
		fmt.Fprintf(out, "Error:    %s\n", msg)
	}
	fmt.Fprintf(out, "Deck:     %s\n", formatDeck(lecture))
	fmt.Fprintf(out, "Updated:  %s\n", formatDisplayTime(lecture.UpdatedAt))

	if len(detail.Notes) == 0 {
		fmt.Fprintln(out, "No notes yet")
		return
	}
	fmt.Fprintln(out)
	table := renderTable(
		[]string{"ID", "Slide", "Kind", "Text"},
		buildNoteRows(detail.Notes),
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	)
	fmt.Fprintln(out, table)
}
