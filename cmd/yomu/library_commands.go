package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yomu/internal/chapterid"
	"yomu/internal/library"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List series in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			seriesList, err := app.store.ListSeries(cmd.Context())
			if err != nil {
				return err
			}
			if len(seriesList) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Library is empty.")
				return nil
			}

			rows := make([][]string, 0, len(seriesList))
			for _, series := range seriesList {
				rows = append(rows, []string{
					strconv.FormatInt(series.ID, 10),
					series.Title,
					string(series.Status),
					strconv.Itoa(series.NumberUnread),
					series.ExtensionID,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Status", "Unread", "Source"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	var relevantOnly bool

	cmd := &cobra.Command{
		Use:   "chapters <series-id>",
		Short: "List a series' chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			series, err := resolveSeries(cmd, app, args[0])
			if err != nil {
				return err
			}
			chapters, err := app.store.ListSeriesChapters(cmd.Context(), series.ID)
			if err != nil {
				return err
			}
			if relevantOnly && len(chapters) > 0 {
				languages := library.NewLanguageSet(app.cfg.Library.PreferredLanguages)
				chapters = chapterid.BuildRelevantList(chapters, chapters[0], languages)
			}
			if len(chapters) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No chapters for %q.\n", series.Title)
				return nil
			}

			rows := make([][]string, 0, len(chapters))
			for _, chapter := range chapters {
				read := ""
				if chapter.Read {
					read = "yes"
				}
				rows = append(rows, []string{
					strconv.FormatInt(chapter.ID, 10),
					chapter.ChapterNumber,
					chapter.VolumeNumber,
					chapter.Title,
					chapter.LanguageKey,
					chapter.GroupName,
					read,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Ch", "Vol", "Title", "Lang", "Group", "Read"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&relevantOnly, "relevant", false, "Show one chapter per number, newest first")
	return cmd
}

// resolveChapter looks up a chapter by numeric id along with its series.
func resolveChapter(cmd *cobra.Command, app *app, arg string) (*library.Chapter, *library.Series, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid chapter id %q", arg)
	}
	chapter, err := app.store.GetChapter(cmd.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	if chapter == nil {
		return nil, nil, fmt.Errorf("chapter %d not found", id)
	}
	series, err := app.store.GetSeries(cmd.Context(), chapter.SeriesID)
	if err != nil {
		return nil, nil, err
	}
	if series == nil {
		return nil, nil, fmt.Errorf("series %d not found", chapter.SeriesID)
	}
	return chapter, series, nil
}

// resolveSeries accepts either a numeric series id or an exact title.
func resolveSeries(cmd *cobra.Command, app *app, arg string) (*library.Series, error) {
	arg = strings.TrimSpace(arg)
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		series, err := app.store.GetSeries(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		if series == nil {
			return nil, fmt.Errorf("series %d not found", id)
		}
		return series, nil
	}

	seriesList, err := app.store.ListSeries(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, series := range seriesList {
		if series.Title == arg {
			return series, nil
		}
	}
	return nil, fmt.Errorf("series %q not found", arg)
}
