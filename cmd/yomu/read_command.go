package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"yomu/internal/config"
	"yomu/internal/reader"
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var stepNext, stepPrevious bool

	cmd := &cobra.Command{
		Use:   "read <chapter-id>",
		Short: "Fetch a chapter's pages and save them to a directory",
		Long: `Fetch a chapter's pages and save them to a directory.

Pages are written as they resolve, so partial output is available while the
chapter is still downloading. The chapter is marked read once it loads.
With --next or --previous the adjacent chapter in the navigation list is
read instead of the one given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stepNext && stepPrevious {
				return fmt.Errorf("--next and --previous are mutually exclusive")
			}

			app, err := ctx.openApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			chapter, _, err := resolveChapter(cmd, app, args[0])
			if err != nil {
				return err
			}

			events := make(chan reader.PageEvent, 64)
			readerCfg := *app.cfg
			readerCfg.Reader.PreloadAmount = 0
			session, err := reader.NewSession(app.store, app.registry, &readerCfg, app.logger, func(evt reader.PageEvent) {
				events <- evt
			})
			if err != nil {
				return err
			}
			session.MarkRead = app.reconciler.ToggleChapterRead

			if err := session.LoadChapter(cmd.Context(), chapter.ID); err != nil {
				return err
			}
			if stepNext || stepPrevious {
				changed, err := session.ChangeChapter(cmd.Context(), stepPrevious)
				if err != nil {
					return err
				}
				if !changed {
					direction := "newer"
					if stepPrevious {
						direction = "older"
					}
					return fmt.Errorf("no %s chapter to read", direction)
				}
			}
			defer session.Exit()

			current := session.CurrentChapter()
			series := session.CurrentSeries()
			generation := session.Generation()

			dir := outDir
			if dir == "" {
				dir = fmt.Sprintf("%s-chapter-%s", sanitizeName(series.Title), current.ChapterNumber)
			}
			dir, err = config.ExpandPath(dir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			out := cmd.OutOrStdout()
			saved := 0
			total := 0
			for evt := range events {
				if evt.Generation != generation {
					continue
				}
				if evt.Done {
					break
				}
				total = evt.TotalPages
				name := filepath.Join(dir, fmt.Sprintf("page-%03d", evt.PageNumber))
				if err := os.WriteFile(name, evt.Data, 0o644); err != nil {
					return fmt.Errorf("write page %d: %w", evt.PageNumber, err)
				}
				saved++
				fmt.Fprintf(out, "Saved page %d/%d\n", evt.PageNumber, evt.TotalPages)
			}

			if saved < total {
				fmt.Fprintf(out, "Saved %d of %d pages to %s (some pages failed)\n", saved, total, dir)
				return nil
			}
			fmt.Fprintf(out, "Saved %d pages to %s\n", saved, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to <title>-chapter-<number>)")
	cmd.Flags().BoolVar(&stepNext, "next", false, "Read the next chapter in the navigation list")
	cmd.Flags().BoolVar(&stepPrevious, "previous", false, "Read the previous chapter in the navigation list")
	return cmd
}
