package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"yomu/internal/covers"
	"yomu/internal/extension"
	"yomu/internal/library"
	"yomu/internal/notifications"
	"yomu/internal/status"
)

// Reconciler merges freshly fetched remote series and chapter data into the
// persisted library.
type Reconciler struct {
	store     *library.Store
	registry  *extension.Registry
	covers    *covers.Manager
	notifier  notifications.Service
	status    *status.Hub
	logger    *slog.Logger
	languages library.LanguageSet

	// The store is not safe for concurrent merges of the same series'
	// chapter set, so all reconciliation runs under one lock.
	mu sync.Mutex
}

// New constructs a reconciler. The status hub and cover manager may be nil in
// tests; notifications default to a noop service when nil.
func New(
	store *library.Store,
	registry *extension.Registry,
	coverManager *covers.Manager,
	notifier notifications.Service,
	hub *status.Hub,
	logger *slog.Logger,
	preferredLanguages []string,
) *Reconciler {
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Reconciler{
		store:     store,
		registry:  registry,
		covers:    coverManager,
		notifier:  notifier,
		status:    hub,
		logger:    logger.With("component", "reconcile"),
		languages: library.NewLanguageSet(preferredLanguages),
	}
}

// ReconcileSeries refreshes one persisted series from its content source.
//
// The operation is atomic at the fetch boundary: if the extension is not
// loaded or either fetch fails, the store is left untouched. Once remote data
// is in hand, the merge carries each matched local chapter's identifier and
// read flag onto the remote chapter, deletes orphaned local chapters whose
// releases disappeared from the source, and recomputes the unread counter.
//
// Series from the filesystem extension keep their locally edited series
// record; only their chapter list is regenerated and merged.
func (r *Reconciler) ReconcileSeries(ctx context.Context, series *library.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconcileSeriesLocked(ctx, series)
}

func (r *Reconciler) reconcileSeriesLocked(ctx context.Context, series *library.Series) error {
	if !series.Persisted() {
		return fmt.Errorf("reconcile series: %w", library.ErrNotPersisted)
	}

	source, err := r.registry.Get(series.ExtensionID)
	if err != nil {
		return err
	}

	merged := series
	if series.ExtensionID != extension.FilesystemID {
		remote, err := source.FetchSeries(ctx, series.SourceID)
		if err != nil {
			return err
		}
		// Remote metadata wins, local user state survives.
		remote.ID = series.ID
		remote.ExtensionID = series.ExtensionID
		remote.SourceID = series.SourceID
		remote.UserTags = series.UserTags
		remote.TrackerKeys = series.TrackerKeys
		remote.NumberUnread = series.NumberUnread
		remote.CreatedAt = series.CreatedAt
		merged = remote
	}

	remoteChapters, err := source.FetchChapters(ctx, series.SourceID)
	if err != nil {
		return err
	}

	localChapters, err := r.store.ListSeriesChapters(ctx, series.ID)
	if err != nil {
		return err
	}

	localBySource := make(map[string]library.Chapter, len(localChapters))
	unmatched := make(map[string]int64, len(localChapters))
	for _, chapter := range localChapters {
		localBySource[chapter.SourceID] = chapter
		unmatched[chapter.SourceID] = chapter.ID
	}

	for i := range remoteChapters {
		remoteChapters[i].SeriesID = series.ID
		if local, ok := localBySource[remoteChapters[i].SourceID]; ok {
			remoteChapters[i].ID = local.ID
			remoteChapters[i].Read = local.Read
			delete(unmatched, remoteChapters[i].SourceID)
		}
	}

	orphanIDs := make([]int64, 0, len(unmatched))
	for _, id := range unmatched {
		orphanIDs = append(orphanIDs, id)
	}

	coverChanged := merged.RemoteCoverURL != series.RemoteCoverURL

	if _, err := r.store.UpsertSeries(ctx, merged); err != nil {
		return err
	}
	if _, err := r.store.UpsertChapters(ctx, remoteChapters, merged); err != nil {
		return err
	}
	if err := r.store.DeleteChapters(ctx, orphanIDs); err != nil {
		return err
	}
	if _, err := r.store.UpdateNumberUnread(ctx, merged, r.languages); err != nil {
		return err
	}

	if len(orphanIDs) > 0 {
		r.logger.Debug("removed orphaned chapters", "series", merged.Title, "count", len(orphanIDs))
	}

	if r.covers != nil && merged.RemoteCoverURL != "" && (coverChanged || !r.covers.HasThumbnail(merged)) {
		r.covers.DownloadAsync(merged)
	}
	return nil
}

// ImportSeries fetches a series from a content source and adds it to the
// library with its full chapter list.
func (r *Reconciler) ImportSeries(ctx context.Context, extensionID, sourceID string) (*library.Series, error) {
	source, err := r.registry.Get(extensionID)
	if err != nil {
		return nil, err
	}
	series, err := source.FetchSeries(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return r.ImportCustomSeries(ctx, series)
}

// ImportCustomSeries persists an already-fetched series description. Used for
// filesystem imports where the caller edits the series record before saving.
func (r *Reconciler) ImportCustomSeries(ctx context.Context, series *library.Series) (*library.Series, error) {
	source, err := r.registry.Get(series.ExtensionID)
	if err != nil {
		return nil, err
	}
	chapters, err := source.FetchChapters(ctx, series.SourceID)
	if err != nil {
		return nil, err
	}

	added, err := r.store.UpsertSeries(ctx, series)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.UpsertChapters(ctx, chapters, added); err != nil {
		return nil, err
	}
	if _, err := r.store.UpdateNumberUnread(ctx, added, r.languages); err != nil {
		return nil, err
	}

	if r.covers != nil && added.RemoteCoverURL != "" {
		r.covers.DownloadAsync(added)
	}
	r.publish(fmt.Sprintf("Added %q to your library.", added.Title))
	if err := r.notifier.NotifySeriesAdded(ctx, added.Title); err != nil {
		r.logger.Warn("series-added notification failed", "error", err)
	}
	return added, nil
}

// ToggleChapterRead flips a chapter's read flag and refreshes the owning
// series' unread counter.
func (r *Reconciler) ToggleChapterRead(ctx context.Context, chapter *library.Chapter, series *library.Series) error {
	if !series.Persisted() || !chapter.Persisted() {
		return fmt.Errorf("toggle chapter read: %w", library.ErrNotPersisted)
	}

	updated := *chapter
	updated.Read = !updated.Read
	if _, err := r.store.UpsertChapters(ctx, []library.Chapter{updated}, series); err != nil {
		return err
	}
	if _, err := r.store.UpdateNumberUnread(ctx, series, r.languages); err != nil {
		return err
	}
	chapter.Read = updated.Read
	return nil
}

// RemoveSeries deletes a series, its chapters, and its cached thumbnail.
func (r *Reconciler) RemoveSeries(ctx context.Context, series *library.Series) error {
	if !series.Persisted() {
		return fmt.Errorf("remove series: %w", library.ErrNotPersisted)
	}
	if _, err := r.store.DeleteSeries(ctx, series.ID); err != nil {
		return err
	}
	if r.covers != nil {
		if err := r.covers.Delete(series); err != nil {
			r.logger.Warn("thumbnail cleanup failed", "series", series.Title, "error", err)
		}
	}
	return nil
}

func (r *Reconciler) publish(text string) {
	if r.status != nil {
		r.status.Publish(text)
	}
}
