package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"yomu/internal/config"
)

// Store manages library persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the library database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "library.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const seriesColumns = "id, extension_id, source_id, title, alt_titles_json, description, authors_json, tags_json, status, original_language, number_unread, remote_cover_url, user_tags_json, tracker_keys_json, created_at, updated_at"

const chapterColumns = "id, series_id, source_id, title, chapter_number, volume_number, language_key, group_name, release_time, read"

// UpsertSeries inserts the series when it has no identifier, or updates the
// existing row otherwise. The returned series always carries an identifier.
func (s *Store) UpsertSeries(ctx context.Context, series *Series) (*Series, error) {
	if series == nil {
		return nil, errors.New("series is nil")
	}

	now := time.Now().UTC()
	series.UpdatedAt = now

	altTitles, err := marshalStrings(series.AltTitles)
	if err != nil {
		return nil, fmt.Errorf("marshal alt titles: %w", err)
	}
	authors, err := marshalStrings(series.Authors)
	if err != nil {
		return nil, fmt.Errorf("marshal authors: %w", err)
	}
	tags, err := marshalStrings(series.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	userTags, err := marshalStrings(series.UserTags)
	if err != nil {
		return nil, fmt.Errorf("marshal user tags: %w", err)
	}
	trackerKeys, err := marshalStringMap(series.TrackerKeys)
	if err != nil {
		return nil, fmt.Errorf("marshal tracker keys: %w", err)
	}

	if !series.Persisted() {
		series.CreatedAt = now
		res, err := s.db.ExecContext(
			ctx,
			`INSERT INTO series (
                extension_id, source_id, title, alt_titles_json, description,
                authors_json, tags_json, status, original_language, number_unread,
                remote_cover_url, user_tags_json, tracker_keys_json, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			series.ExtensionID,
			series.SourceID,
			series.Title,
			altTitles,
			nullableString(series.Description),
			authors,
			tags,
			string(series.Status),
			nullableString(series.OriginalLanguage),
			series.NumberUnread,
			nullableString(series.RemoteCoverURL),
			userTags,
			trackerKeys,
			now.Format(time.RFC3339Nano),
			now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return nil, fmt.Errorf("insert series: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		series.ID = id
		series.CreatedAt = now
		return series, nil
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE series
         SET extension_id = ?, source_id = ?, title = ?, alt_titles_json = ?,
             description = ?, authors_json = ?, tags_json = ?, status = ?,
             original_language = ?, number_unread = ?, remote_cover_url = ?,
             user_tags_json = ?, tracker_keys_json = ?, updated_at = ?
         WHERE id = ?`,
		series.ExtensionID,
		series.SourceID,
		series.Title,
		altTitles,
		nullableString(series.Description),
		authors,
		tags,
		string(series.Status),
		nullableString(series.OriginalLanguage),
		series.NumberUnread,
		nullableString(series.RemoteCoverURL),
		userTags,
		trackerKeys,
		now.Format(time.RFC3339Nano),
		series.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update series: %w", err)
	}
	return series, nil
}

// GetSeries fetches a series by identifier. Returns nil when no row matches.
func (s *Store) GetSeries(ctx context.Context, id int64) (*Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE id = ?`, id)
	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	return series, nil
}

// FindSeriesBySource returns the series matching an extension/source pair.
func (s *Store) FindSeriesBySource(ctx context.Context, extensionID, sourceID string) (*Series, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+seriesColumns+` FROM series WHERE extension_id = ? AND source_id = ? LIMIT 1`,
		extensionID,
		sourceID,
	)
	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find series by source: %w", err)
	}
	return series, nil
}

// ListSeries returns every series in the library ordered by title.
func (s *Store) ListSeries(ctx context.Context) ([]*Series, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+seriesColumns+` FROM series ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var seriesList []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		seriesList = append(seriesList, series)
	}
	return seriesList, rows.Err()
}

// DeleteSeries removes a series and, through the schema's cascade, all of its
// chapters. Returns whether a row was deleted.
func (s *Store) DeleteSeries(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete series: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpsertChapters persists the chapter list for a series. Chapters without an
// identifier are inserted; the rest are updated in place. The owning series
// must already be persisted.
func (s *Store) UpsertChapters(ctx context.Context, chapters []Chapter, series *Series) ([]Chapter, error) {
	if !series.Persisted() {
		return nil, fmt.Errorf("upsert chapters: %w", ErrNotPersisted)
	}

	out := make([]Chapter, 0, len(chapters))
	for _, chapter := range chapters {
		chapter.SeriesID = series.ID
		if chapter.ID == 0 {
			res, err := s.db.ExecContext(
				ctx,
				`INSERT INTO chapters (
                    series_id, source_id, title, chapter_number, volume_number,
                    language_key, group_name, release_time, read
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				chapter.SeriesID,
				chapter.SourceID,
				nullableString(chapter.Title),
				nullableString(chapter.ChapterNumber),
				nullableString(chapter.VolumeNumber),
				nullableString(chapter.LanguageKey),
				nullableString(chapter.GroupName),
				nullableTime(chapter.Time),
				boolToInt(chapter.Read),
			)
			if err != nil {
				return nil, fmt.Errorf("insert chapter %q: %w", chapter.SourceID, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("last insert id: %w", err)
			}
			chapter.ID = id
		} else {
			_, err := s.db.ExecContext(
				ctx,
				`UPDATE chapters
                 SET series_id = ?, source_id = ?, title = ?, chapter_number = ?,
                     volume_number = ?, language_key = ?, group_name = ?,
                     release_time = ?, read = ?
                 WHERE id = ?`,
				chapter.SeriesID,
				chapter.SourceID,
				nullableString(chapter.Title),
				nullableString(chapter.ChapterNumber),
				nullableString(chapter.VolumeNumber),
				nullableString(chapter.LanguageKey),
				nullableString(chapter.GroupName),
				nullableTime(chapter.Time),
				boolToInt(chapter.Read),
				chapter.ID,
			)
			if err != nil {
				return nil, fmt.Errorf("update chapter %d: %w", chapter.ID, err)
			}
		}
		out = append(out, chapter)
	}
	return out, nil
}

// ListSeriesChapters returns every chapter owned by a series.
func (s *Store) ListSeriesChapters(ctx context.Context, seriesID int64) ([]Chapter, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE series_id = ? ORDER BY id`,
		seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("list series chapters: %w", err)
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *chapter)
	}
	return chapters, rows.Err()
}

// GetChapter fetches a chapter by identifier. Returns nil when no row matches.
func (s *Store) GetChapter(ctx context.Context, id int64) (*Chapter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id)
	chapter, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return chapter, nil
}

// DeleteChapters removes chapters by identifier.
func (s *Store) DeleteChapters(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM chapters WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete chapters: %w", err)
	}
	return nil
}

// UpdateNumberUnread recomputes the cached unread counter from the persisted
// chapter set and stores it on the series row. Returns the new value.
func (s *Store) UpdateNumberUnread(ctx context.Context, series *Series, languages LanguageSet) (int, error) {
	if !series.Persisted() {
		return 0, fmt.Errorf("update number unread: %w", ErrNotPersisted)
	}

	chapters, err := s.ListSeriesChapters(ctx, series.ID)
	if err != nil {
		return 0, err
	}
	count := CountUnread(chapters, languages)

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE series SET number_unread = ?, updated_at = ? WHERE id = ?`,
		count,
		time.Now().UTC().Format(time.RFC3339Nano),
		series.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update number unread: %w", err)
	}
	series.NumberUnread = count
	return count, nil
}

func scanSeries(scanner interface{ Scan(dest ...any) error }) (*Series, error) {
	var (
		id           int64
		extensionID  string
		sourceID     string
		title        string
		altTitles    sql.NullString
		description  sql.NullString
		authors      sql.NullString
		tags         sql.NullString
		statusStr    string
		origLanguage sql.NullString
		numberUnread int
		coverURL     sql.NullString
		userTags     sql.NullString
		trackerKeys  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&extensionID,
		&sourceID,
		&title,
		&altTitles,
		&description,
		&authors,
		&tags,
		&statusStr,
		&origLanguage,
		&numberUnread,
		&coverURL,
		&userTags,
		&trackerKeys,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	series := &Series{
		ID:               id,
		ExtensionID:      extensionID,
		SourceID:         sourceID,
		Title:            title,
		Description:      description.String,
		Status:           SeriesStatus(statusStr),
		OriginalLanguage: origLanguage.String,
		NumberUnread:     numberUnread,
		RemoteCoverURL:   coverURL.String,
	}

	var err error
	if series.AltTitles, err = unmarshalStrings(altTitles.String); err != nil {
		return nil, fmt.Errorf("unmarshal alt titles: %w", err)
	}
	if series.Authors, err = unmarshalStrings(authors.String); err != nil {
		return nil, fmt.Errorf("unmarshal authors: %w", err)
	}
	if series.Tags, err = unmarshalStrings(tags.String); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if series.UserTags, err = unmarshalStrings(userTags.String); err != nil {
		return nil, fmt.Errorf("unmarshal user tags: %w", err)
	}
	if series.TrackerKeys, err = unmarshalStringMap(trackerKeys.String); err != nil {
		return nil, fmt.Errorf("unmarshal tracker keys: %w", err)
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		series.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		series.UpdatedAt = updated
	}
	return series, nil
}

func scanChapter(scanner interface{ Scan(dest ...any) error }) (*Chapter, error) {
	var (
		id            int64
		seriesID      int64
		sourceID      string
		title         sql.NullString
		chapterNumber sql.NullString
		volumeNumber  sql.NullString
		languageKey   sql.NullString
		groupName     sql.NullString
		releaseRaw    sql.NullString
		readInt       int
	)

	if err := scanner.Scan(
		&id,
		&seriesID,
		&sourceID,
		&title,
		&chapterNumber,
		&volumeNumber,
		&languageKey,
		&groupName,
		&releaseRaw,
		&readInt,
	); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:            id,
		SeriesID:      seriesID,
		SourceID:      sourceID,
		Title:         title.String,
		ChapterNumber: chapterNumber.String,
		VolumeNumber:  volumeNumber.String,
		LanguageKey:   languageKey.String,
		GroupName:     groupName.String,
		Read:          readInt != 0,
	}
	if released, err := parseTimeString(releaseRaw.String); err == nil {
		chapter.Time = released
	}
	return chapter, nil
}

func marshalStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func marshalStringMap(values map[string]string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalStringMap(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
