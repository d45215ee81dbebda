package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <series-id>",
		Short: "Remove a series and its chapters from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			series, err := resolveSeries(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := app.reconciler.RemoveSeries(cmd.Context(), series); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from the library.\n", series.Title)
			return nil
		},
	}
}

func newToggleReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-read <chapter-id>",
		Short: "Flip a chapter's read flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			chapter, series, err := resolveChapter(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := app.reconciler.ToggleChapterRead(cmd.Context(), chapter, series); err != nil {
				return err
			}
			state := "unread"
			if chapter.Read {
				state = "read"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chapter %s of %q marked %s.\n", chapter.ChapterNumber, series.Title, state)
			return nil
		},
	}
}
