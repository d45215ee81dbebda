package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yomu/internal/config"
	"yomu/internal/extension"
	"yomu/internal/status"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var extensionID string

	cmd := &cobra.Command{
		Use:   "import <source-id>",
		Short: "Add a series to the library",
		Long: `Add a series to the library from a content source.

The source id is source specific: a series identifier for webdex, or an
absolute directory path for the filesystem source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			app.hub.AddSink(status.SinkFunc(func(evt status.Event) {
				fmt.Fprintln(out, evt.Text)
			}))

			sourceID := strings.TrimSpace(args[0])
			if extensionID == extension.FilesystemID {
				expanded, err := config.ExpandPath(sourceID)
				if err != nil {
					return err
				}
				sourceID = expanded
			}

			series, err := app.reconciler.ImportSeries(cmd.Context(), extensionID, sourceID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Series %d: %s\n", series.ID, series.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&extensionID, "source", "s", extension.FilesystemID, "Content source id")
	return cmd
}
