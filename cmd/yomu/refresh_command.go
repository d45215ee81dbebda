package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yomu/internal/status"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [series-id]",
		Short: "Refresh the whole library, or one series, from its content sources",
		Args:  cobra.MaximumNArgs(1),
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

			if len(args) == 1 {
				series, err := resolveSeries(cmd, app, args[0])
				if err != nil {
					return err
				}
				if err := app.reconciler.ReconcileSeries(cmd.Context(), series); err != nil {
					return err
				}
				fmt.Fprintf(out, "Reloaded %q\n", series.Title)
				return nil
			}

			seriesList, err := app.store.ListSeries(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := app.reconciler.ReconcileLibrary(cmd.Context(), seriesList)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Finished in %s\n", summary.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
