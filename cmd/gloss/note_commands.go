package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newNoteCommand(ctx *commandContext) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Capture and edit lecture notes",
	}

	noteCmd.AddCommand(newNoteAddCommand(ctx))
	noteCmd.AddCommand(newNoteListCommand(ctx))
	noteCmd.AddCommand(newNoteEditCommand(ctx))
	noteCmd.AddCommand(newNoteRemoveCommand(ctx))

	return noteCmd
}

func newNoteAddCommand(ctx *commandContext) *cobra.Command {
	var slide int

	cmd := &cobra.Command{
		Use:   "add <lecture> <text...>",
		Short: "Append note text to a draft lecture",
		Long: "Append note text to a draft lecture. Lines starting with - are general\n" +
			"notes, ? marks questions, ~ marks uncertainty, and ! flags important\n" +
			"points. Blank lines split the text into separate notes.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return ctx.withAPI(func(api glossAPI) error {
				notes, err := api.NoteAdd(cmd.Context(), args[0], slide, text)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, notes)
				}
				for _, note := range notes {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s note %d (slide %s)\n",
						strings.ToLower(note.Label), note.ID, formatSlide(note.Slide))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&slide, "slide", "s", 0, "Slide number the note refers to (0 for none)")
	return cmd
}

func newNoteListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <lecture>",
		Short: "List notes for a lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(api glossAPI) error {
				notes, err := api.NoteList(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, notes)
				}
				rows := buildNoteRows(notes)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No notes yet")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Slide", "Kind", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newNoteEditCommand(ctx *commandContext) *cobra.Command {
	var slide int

	cmd := &cobra.Command{
		Use:   "edit <note-id> <text...>",
		Short: "Rewrite a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			text := strings.Join(args[1:], " ")
			return ctx.withAPI(func(api glossAPI) error {
				note, err := api.NoteEdit(cmd.Context(), id, slide, text)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, note)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d (slide %s)\n", note.ID, formatSlide(note.Slide))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&slide, "slide", "s", 0, "New slide number (0 keeps the current one)")
	return cmd
}

func newNoteRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <note-id>",
		Short: "Remove a note from a draft lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			return ctx.withAPI(func(api glossAPI) error {
				if err := api.NoteRemove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed note %d\n", id)
				return nil
			})
		},
	}
}
