package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// SQLiteStore implements Store on a local sqlite file. It is the default
// driver for single-machine runs and for development.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One writer at a time; sqlite serializes writes anyway.
	dbh.SetMaxOpenConns(1)

	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA synchronous = NORMAL`,
		`PRAGMA foreign_keys = ON`,
	}
	for _, p := range pragmas {
		if _, err := dbh.ExecContext(ctx, p); err != nil {
			dbh.Close()
			return nil, eris.Wrapf(err, "sqlite: %s", p)
		}
	}
	return &SQLiteStore{db: dbh}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS celebrities (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	normalized_name  TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	name_telugu      TEXT NOT NULL DEFAULT '',
	wikidata_id      TEXT NOT NULL DEFAULT '',
	tmdb_id          INTEGER NOT NULL DEFAULT 0,
	imdb_id          TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT '',
	occupations      TEXT NOT NULL DEFAULT '[]',
	popularity_score REAL NOT NULL DEFAULT 0,
	tmdb_popularity  REAL NOT NULL DEFAULT 0,
	trend_score      REAL NOT NULL DEFAULT 0,
	birth_date       TEXT NOT NULL DEFAULT '',
	wikipedia_url    TEXT NOT NULL DEFAULT '',
	discovery_source TEXT NOT NULL DEFAULT '',
	sources          TEXT NOT NULL DEFAULT '[]',
	is_active        INTEGER NOT NULL DEFAULT 1,
	discovered_at    TIMESTAMP NOT NULL,
	last_seen_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS celebrity_social_profiles (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	celebrity_key    TEXT NOT NULL,
	platform         TEXT NOT NULL,
	handle           TEXT NOT NULL,
	url              TEXT NOT NULL DEFAULT '',
	confidence_score REAL NOT NULL DEFAULT 0,
	verified         INTEGER NOT NULL DEFAULT 0,
	UNIQUE (celebrity_key, platform)
);

CREATE TABLE IF NOT EXISTS hot_media (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	celebrity_key  TEXT NOT NULL,
	celebrity_name TEXT NOT NULL,
	platform       TEXT NOT NULL,
	url            TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	caption        TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'discovered',
	blocked_reason TEXT NOT NULL DEFAULT '',
	views          INTEGER NOT NULL DEFAULT 0,
	likes          INTEGER NOT NULL DEFAULT 0,
	shares         INTEGER NOT NULL DEFAULT 0,
	clicks         INTEGER NOT NULL DEFAULT 0,
	trending_score REAL NOT NULL DEFAULT 0,
	published_at   TIMESTAMP,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (celebrity_key, platform, url)
);

CREATE TABLE IF NOT EXISTS media_entities (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	celebrity_key TEXT NOT NULL,
	platform      TEXT NOT NULL,
	url           TEXT NOT NULL,
	type          TEXT NOT NULL DEFAULT '',
	license       TEXT NOT NULL DEFAULT 'unknown',
	confidence    REAL NOT NULL DEFAULT 0,
	fetched_at    TIMESTAMP NOT NULL,
	UNIQUE (celebrity_key, url)
);

CREATE TABLE IF NOT EXISTS engagement_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id  INTEGER NOT NULL,
	views       INTEGER NOT NULL DEFAULT 0,
	likes       INTEGER NOT NULL DEFAULT 0,
	shares      INTEGER NOT NULL DEFAULT 0,
	clicks      INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS trend_inputs (
	keyword    TEXT PRIMARY KEY,
	boost      REAL NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hot_media_status ON hot_media(status);
CREATE INDEX IF NOT EXISTS idx_hot_media_celebrity ON hot_media(celebrity_key);
CREATE INDEX IF NOT EXISTS idx_engagement_events_content ON engagement_events(content_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCelebrities(ctx context.Context, celebs []model.Celebrity) (int64, error) {
	if len(celebs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO celebrities
		(normalized_name, name, name_telugu, wikidata_id, tmdb_id, imdb_id, type,
		 occupations, popularity_score, tmdb_popularity, trend_score, birth_date,
		 wikipedia_url, discovery_source, sources, is_active, discovered_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (normalized_name) DO UPDATE SET
			name = excluded.name,
			name_telugu = excluded.name_telugu,
			wikidata_id = excluded.wikidata_id,
			tmdb_id = excluded.tmdb_id,
			imdb_id = excluded.imdb_id,
			type = excluded.type,
			occupations = excluded.occupations,
			popularity_score = excluded.popularity_score,
			tmdb_popularity = excluded.tmdb_popularity,
			trend_score = excluded.trend_score,
			birth_date = excluded.birth_date,
			wikipedia_url = excluded.wikipedia_url,
			discovery_source = excluded.discovery_source,
			sources = excluded.sources,
			last_seen_at = excluded.last_seen_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare celebrity upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var count int64
	for _, c := range celebs {
		key := c.MergeKey()
		if key == "" {
			continue
		}
		occJSON, err := json.Marshal(orEmpty(c.Occupations))
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal occupations for %s", key)
		}
		srcJSON, err := json.Marshal(c.Sources)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal sources for %s", key)
		}
		discoveredAt := c.DiscoveredAt
		if discoveredAt.IsZero() {
			discoveredAt = now
		}
		lastSeen := c.LastSeenAt
		if lastSeen.IsZero() {
			lastSeen = now
		}
		if _, err := stmt.ExecContext(ctx,
			key, c.Name, c.NameTelugu, c.WikidataID, c.TMDBID, c.IMDBID, string(c.Type),
			string(occJSON), c.PopularityScore, c.TMDBPopularity, c.TrendScore, c.BirthDate,
			c.WikipediaURL, string(c.Source), string(srcJSON), discoveredAt, lastSeen,
		); err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert celebrity %s", key)
		}
		count++
	}
	return count, eris.Wrap(tx.Commit(), "sqlite: commit celebrity upsert")
}

func (s *SQLiteStore) ListCelebrities(ctx context.Context, activeOnly bool, limit int) ([]model.Celebrity, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT id, name, name_telugu, wikidata_id, tmdb_id, imdb_id, type,
		occupations, popularity_score, tmdb_popularity, trend_score, birth_date,
		wikipedia_url, discovery_source, sources, is_active, discovered_at, last_seen_at
		FROM celebrities`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY normalized_name LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list celebrities")
	}
	defer rows.Close()

	var celebs []model.Celebrity
	for rows.Next() {
		var c model.Celebrity
		var occJSON, srcJSON, typ, source string
		if err := rows.Scan(
			&c.ID, &c.Name, &c.NameTelugu, &c.WikidataID, &c.TMDBID, &c.IMDBID, &typ,
			&occJSON, &c.PopularityScore, &c.TMDBPopularity, &c.TrendScore, &c.BirthDate,
			&c.WikipediaURL, &source, &srcJSON, &c.IsActive, &c.DiscoveredAt, &c.LastSeenAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan celebrity")
		}
		c.Type = model.EntityType(typ)
		c.Source = model.DiscoverySource(source)
		if occJSON != "" {
			if err := json.Unmarshal([]byte(occJSON), &c.Occupations); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode occupations for %s", c.Name)
			}
		}
		if srcJSON != "" {
			if err := json.Unmarshal([]byte(srcJSON), &c.Sources); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode sources for %s", c.Name)
			}
		}
		celebs = append(celebs, c)
	}
	return celebs, eris.Wrap(rows.Err(), "sqlite: iterate celebrities")
}

func (s *SQLiteStore) DeactivateCelebrity(ctx context.Context, mergeKey string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE celebrities SET is_active = 0, last_seen_at = ? WHERE normalized_name = ?`,
		time.Now().UTC(), mergeKey,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: deactivate %s", mergeKey)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: deactivate rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: no celebrity with key %s", mergeKey)
	}
	return nil
}

func (s *SQLiteStore) UpsertSocialProfiles(ctx context.Context, mergeKey string, profiles []model.SocialProfile) (int64, error) {
	var count int64
	for _, p := range profiles {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO celebrity_social_profiles
				(celebrity_key, platform, handle, url, confidence_score, verified)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (celebrity_key, platform) DO UPDATE SET
				handle = excluded.handle,
				url = excluded.url,
				confidence_score = excluded.confidence_score,
				verified = excluded.verified`,
			mergeKey, p.Platform, p.Handle, p.URL, p.ConfidenceScore, p.Verified,
		); err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert profile %s/%s", mergeKey, p.Platform)
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) UpsertContent(ctx context.Context, c model.ContentCandidate) error {
	key := model.NormalizeName(c.CelebrityName)
	if key == "" {
		return eris.New("sqlite: content candidate without celebrity name")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hot_media
			(celebrity_key, celebrity_name, platform, url, title, caption, status, blocked_reason, trending_score, published_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (celebrity_key, platform, url) DO UPDATE SET
			title = excluded.title,
			caption = excluded.caption,
			status = excluded.status,
			blocked_reason = excluded.blocked_reason,
			updated_at = CURRENT_TIMESTAMP`,
		key, c.CelebrityName, c.Platform, c.URL, c.Title, c.Caption,
		string(c.Status), c.BlockedReason, c.TrendingScore, c.PublishedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert content %s/%s", key, c.Platform)
}

func (s *SQLiteStore) UpdateContentStatus(ctx context.Context, id int64, status model.ContentStatus, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE hot_media SET status = ?, blocked_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), reason, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update content status %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: status rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: no content with id %d", id)
	}
	return nil
}

func (s *SQLiteStore) ListContent(ctx context.Context, filter ContentFilter) ([]model.ContentCandidate, error) {
	query := `SELECT id, celebrity_key, celebrity_name, platform, url, title, caption,
		status, blocked_reason, views, likes, shares, clicks, trending_score,
		published_at, created_at, updated_at FROM hot_media WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.CelebrityKey != "" {
		query += ` AND celebrity_key = ?`
		args = append(args, filter.CelebrityKey)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list content")
	}
	defer rows.Close()

	var out []model.ContentCandidate
	for rows.Next() {
		var c model.ContentCandidate
		var key, status string
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&c.ID, &key, &c.CelebrityName, &c.Platform, &c.URL, &c.Title, &c.Caption,
			&status, &c.BlockedReason, &c.Views, &c.Likes, &c.Shares, &c.Clicks,
			&c.TrendingScore, &publishedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan content")
		}
		c.Status = model.ContentStatus(status)
		if publishedAt.Valid {
			t := publishedAt.Time
			c.PublishedAt = &t
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate content")
}

func (s *SQLiteStore) UpdateTrendingScore(ctx context.Context, id int64, score float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE hot_media SET trending_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		score, id,
	)
	return eris.Wrapf(err, "sqlite: update trending score %d", id)
}

func (s *SQLiteStore) UpsertImageMetadata(ctx context.Context, mergeKey string, images []model.ImageSourceMetadata) (int64, error) {
	var count int64
	for _, img := range images {
		fetchedAt := img.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO media_entities
				(celebrity_key, platform, url, type, license, confidence, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (celebrity_key, url) DO UPDATE SET
				platform = excluded.platform,
				type = excluded.type,
				license = excluded.license,
				confidence = excluded.confidence,
				fetched_at = excluded.fetched_at`,
			mergeKey, img.Platform, img.URL, string(img.Type), string(img.License), img.Confidence, fetchedAt,
		); err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert image %s", img.URL)
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) RecordEngagement(ctx context.Context, rec model.EngagementRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin engagement tx")
	}
	defer tx.Rollback() //nolint:errcheck

	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO engagement_events (content_id, views, likes, shares, clicks, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ContentID, rec.Views, rec.Likes, rec.Shares, rec.Clicks, recordedAt,
	); err != nil {
		return eris.Wrap(err, "sqlite: insert engagement event")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE hot_media SET
			views = views + ?, likes = likes + ?,
			shares = shares + ?, clicks = clicks + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rec.Views, rec.Likes, rec.Shares, rec.Clicks, rec.ContentID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: accrue engagement")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: engagement rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: no content with id %d", rec.ContentID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit engagement tx")
}

func (s *SQLiteStore) SaveTrendBoosts(ctx context.Context, boosts map[string]float64) error {
	for keyword, boost := range boosts {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO trend_inputs (keyword, boost, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (keyword) DO UPDATE SET boost = excluded.boost, updated_at = excluded.updated_at`,
			keyword, boost, time.Now().UTC(),
		); err != nil {
			return eris.Wrapf(err, "sqlite: save trend boost %s", keyword)
		}
	}
	return nil
}

func (s *SQLiteStore) ResetLearningState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM trend_inputs`)
	return eris.Wrap(err, "sqlite: reset learning state")
}

func (s *SQLiteStore) LoadTrendBoosts(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword, boost FROM trend_inputs`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load trend boosts")
	}
	defer rows.Close()

	boosts := make(map[string]float64)
	for rows.Next() {
		var keyword string
		var boost float64
		if err := rows.Scan(&keyword, &boost); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trend boost")
		}
		boosts[keyword] = boost
	}
	return boosts, eris.Wrap(rows.Err(), "sqlite: iterate trend boosts")
}
