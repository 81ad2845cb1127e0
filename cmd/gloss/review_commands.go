package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gloss/internal/api"
)

func newFinalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <lecture>",
		Short: "Lock a draft lecture's notes for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(client glossAPI) error {
				lecture, err := client.Finalize(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, lecture)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Finalized lecture %q\n", lecture.Title)
				fmt.Fprintf(out, "Start the AI review with `gloss review %s`\n", args[0])
				return nil
			})
		},
	}
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review <lecture>",
		Short: "Run the AI review for a finalized lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(client glossAPI) error {
				lecture, err := client.ReviewStart(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				runner, offline := client.(reviewRunner)
				if !offline {
					if ctx.jsonMode() {
						return writeJSON(cmd, lecture)
					}
					fmt.Fprintf(out, "Queued review for %q; the daemon will process it\n", lecture.Title)
					return nil
				}

				if !ctx.jsonMode() {
					fmt.Fprintf(out, "Daemon not running; reviewing %q in this process\n", lecture.Title)
				}
				reviewed, err := runner.RunQueuedReview(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, reviewed)
				}
				fmt.Fprintf(out, "Review complete: %d cards\n", reviewed.Progress.Total)
				return nil
			})
		},
	}
}

func newCardsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cards <lecture>",
		Short: "List review cards for a lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPI(func(client glossAPI) error {
				cards, err := client.Cards(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, cards)
				}
				rows := buildCardRows(cards)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No review cards yet")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Slide", "Kind", "Note", "State"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newCardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "card <card-id>",
		Short: "Show a review card with its follow-up thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			return ctx.withAPI(func(client glossAPI) error {
				detail, err := client.Card(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, detail)
				}
				printCardDetail(cmd, detail)
				return nil
			})
		},
	}
}

func newAskCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <card-id> <question...>",
		Short: "Ask a follow-up question on a reviewed card",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			question := strings.Join(args[1:], " ")
			return ctx.withAPI(func(client glossAPI) error {
				exchange, err := client.FollowUp(cmd.Context(), id, question)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, exchange)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Q: %s\n", exchange.Question)
				printIndented(out, "A:", exchange.Answer)
				return nil
			})
		},
	}
}

func newRegenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "regen <card-id>",
		Short: "Re-run the review for a single card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCardID(args[0])
			if err != nil {
				return err
			}
			return ctx.withAPI(func(client glossAPI) error {
				card, err := client.Regenerate(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, card)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Regenerated card %d\n", card.ID)
				printIndented(out, "Review:", card.Response)
				return nil
			})
		},
	}
}

func parseCardID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id %q", arg)
	}
	return id, nil
}

func printCardDetail(cmd *cobra.Command, detail *api.CardDetail) {
	out := cmd.OutOrStdout()
	card := detail.Card

	fmt.Fprintf(out, "Card %d: %s (slide %s)\n", card.ID, card.Label, formatSlide(card.Slide))
	if card.Failed {
		fmt.Fprintln(out, renderStatusLine("Status", statusError, card.ErrorMessage, shouldColorize(out)))
	}
	if model := strings.TrimSpace(card.Model); model != "" {
		fmt.Fprintf(out, "Model: %s (%d input / %d output tokens)\n", model, card.InputTokens, card.OutputTokens)
	}
	fmt.Fprintln(out)
	printIndented(out, "Note:", card.NoteText)
	if strings.TrimSpace(card.Response) != "" {
		fmt.Fprintln(out)
		printIndented(out, "Review:", card.Response)
	}

	for i, exchange := range detail.Exchanges {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Q%d: %s\n", i+1, exchange.Question)
		printIndented(out, fmt.Sprintf("A%d:", i+1), exchange.Answer)
	}
}
