package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"yomu/internal/extension"
	"yomu/internal/library"
)

// Summary describes the outcome of a batch library refresh.
type Summary struct {
	Processed int
	Errors    int
	Duration  time.Duration
}

// ReconcileLibrary refreshes every given series sequentially in collated
// title order, publishing a progress line per series. Per-series fetch and
// extension failures are tallied and logged without aborting the batch;
// store-layer failures abort immediately and propagate.
func (r *Reconciler) ReconcileLibrary(ctx context.Context, seriesList []*library.Series) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]*library.Series, len(seriesList))
	copy(sorted, seriesList)
	collator := collate.New(language.Und, collate.Loose)
	sort.SliceStable(sorted, func(i, j int) bool {
		return collator.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})

	total := len(sorted)
	start := time.Now()
	if err := r.notifier.NotifyRefreshStarted(ctx, total); err != nil {
		r.logger.Warn("refresh-started notification failed", "error", err)
	}

	summary := Summary{}
	for _, series := range sorted {
		r.publish(fmt.Sprintf("Reloading library (%d/%d) - %s", summary.Processed, total, series.Title))
		if err := r.reconcileSeriesLocked(ctx, series); err != nil {
			if !recoverable(err) {
				summary.Duration = time.Since(start)
				return summary, err
			}
			summary.Errors++
			r.logger.Warn("series refresh failed", "series", series.Title, "error", err)
		}
		summary.Processed++
	}
	summary.Duration = time.Since(start)

	r.publish(summaryText(summary.Processed, summary.Errors))
	if err := r.notifier.NotifyRefreshCompleted(ctx, summary.Processed, summary.Errors, summary.Duration); err != nil {
		r.logger.Warn("refresh-completed notification failed", "error", err)
	}
	return summary, nil
}

// recoverable reports whether a per-series failure should be tallied rather
// than abort the batch. Anything else is treated as a store failure.
func recoverable(err error) bool {
	return errors.Is(err, extension.ErrUnavailable) ||
		errors.Is(err, extension.ErrFetchFailed) ||
		errors.Is(err, library.ErrNotPersisted)
}

func summaryText(processed, failed int) string {
	if failed > 0 {
		noun := "errors"
		if failed == 1 {
			noun = "error"
		}
		return fmt.Sprintf("Reloaded %d series with %d %s", processed, failed, noun)
	}
	if processed == 1 {
		return "Reloaded 1 series"
	}
	return fmt.Sprintf("Reloaded %d series", processed)
}
