package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/db"
	"github.com/teluguvibes/curator-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS celebrities (
	id               BIGSERIAL PRIMARY KEY,
	normalized_name  TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	name_telugu      TEXT NOT NULL DEFAULT '',
	wikidata_id      TEXT NOT NULL DEFAULT '',
	tmdb_id          BIGINT NOT NULL DEFAULT 0,
	imdb_id          TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT '',
	occupations      JSONB NOT NULL DEFAULT '[]',
	popularity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	tmdb_popularity  DOUBLE PRECISION NOT NULL DEFAULT 0,
	trend_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	birth_date       TEXT NOT NULL DEFAULT '',
	wikipedia_url    TEXT NOT NULL DEFAULT '',
	discovery_source TEXT NOT NULL DEFAULT '',
	sources          JSONB NOT NULL DEFAULT '[]',
	is_active        BOOLEAN NOT NULL DEFAULT true,
	discovered_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS celebrity_social_profiles (
	id               BIGSERIAL PRIMARY KEY,
	celebrity_key    TEXT NOT NULL,
	platform         TEXT NOT NULL,
	handle           TEXT NOT NULL,
	url              TEXT NOT NULL DEFAULT '',
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	verified         BOOLEAN NOT NULL DEFAULT false,
	UNIQUE (celebrity_key, platform)
);

CREATE TABLE IF NOT EXISTS hot_media (
	id             BIGSERIAL PRIMARY KEY,
	celebrity_key  TEXT NOT NULL,
	celebrity_name TEXT NOT NULL,
	platform       TEXT NOT NULL,
	url            TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	caption        TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'discovered',
	blocked_reason TEXT NOT NULL DEFAULT '',
	views          BIGINT NOT NULL DEFAULT 0,
	likes          BIGINT NOT NULL DEFAULT 0,
	shares         BIGINT NOT NULL DEFAULT 0,
	clicks         BIGINT NOT NULL DEFAULT 0,
	trending_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	published_at   TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (celebrity_key, platform, url)
);

CREATE TABLE IF NOT EXISTS media_entities (
	id            BIGSERIAL PRIMARY KEY,
	celebrity_key TEXT NOT NULL,
	platform      TEXT NOT NULL,
	url           TEXT NOT NULL,
	type          TEXT NOT NULL DEFAULT '',
	license       TEXT NOT NULL DEFAULT 'unknown',
	confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
	fetched_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (celebrity_key, url)
);

CREATE TABLE IF NOT EXISTS engagement_events (
	id          BIGSERIAL PRIMARY KEY,
	content_id  BIGINT NOT NULL,
	views       BIGINT NOT NULL DEFAULT 0,
	likes       BIGINT NOT NULL DEFAULT 0,
	shares      BIGINT NOT NULL DEFAULT 0,
	clicks      BIGINT NOT NULL DEFAULT 0,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trend_inputs (
	keyword    TEXT PRIMARY KEY,
	boost      DOUBLE PRECISION NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_celebrities_active ON celebrities(is_active);
CREATE INDEX IF NOT EXISTS idx_hot_media_status ON hot_media(status);
CREATE INDEX IF NOT EXISTS idx_hot_media_celebrity ON hot_media(celebrity_key);
CREATE INDEX IF NOT EXISTS idx_engagement_events_content ON engagement_events(content_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var celebrityColumns = []string{
	"normalized_name", "name", "name_telugu", "wikidata_id", "tmdb_id",
	"imdb_id", "type", "occupations", "popularity_score", "tmdb_popularity",
	"trend_score", "birth_date", "wikipedia_url", "discovery_source",
	"sources", "is_active", "discovered_at", "last_seen_at",
}

// UpsertCelebrities writes entities keyed by normalized name. Existing
// rows are overwritten with the freshly resolved record; resolution has
// already applied trust ordering and max-merge.
func (s *PostgresStore) UpsertCelebrities(ctx context.Context, celebs []model.Celebrity) (int64, error) {
	if len(celebs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(celebs))
	for _, c := range celebs {
		key := c.MergeKey()
		if key == "" {
			continue
		}
		occJSON, err := json.Marshal(orEmpty(c.Occupations))
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal occupations for %s", key)
		}
		srcJSON, err := json.Marshal(c.Sources)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal sources for %s", key)
		}
		discoveredAt := c.DiscoveredAt
		if discoveredAt.IsZero() {
			discoveredAt = now
		}
		lastSeen := c.LastSeenAt
		if lastSeen.IsZero() {
			lastSeen = now
		}
		rows = append(rows, []any{
			key, c.Name, c.NameTelugu, c.WikidataID, c.TMDBID,
			c.IMDBID, string(c.Type), occJSON, c.PopularityScore, c.TMDBPopularity,
			c.TrendScore, c.BirthDate, c.WikipediaURL, string(c.Source),
			srcJSON, true, discoveredAt, lastSeen,
		})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "celebrities",
		Columns:      celebrityColumns,
		ConflictKeys: []string{"normalized_name"},
		// is_active and discovered_at are not overwritten on re-discovery:
		// deactivation is an explicit admin action and first-seen is fixed.
		UpdateCols: []string{
			"name", "name_telugu", "wikidata_id", "tmdb_id", "imdb_id",
			"type", "occupations", "popularity_score", "tmdb_popularity",
			"trend_score", "birth_date", "wikipedia_url", "discovery_source",
			"sources", "last_seen_at",
		},
	}, rows)
}

func (s *PostgresStore) ListCelebrities(ctx context.Context, activeOnly bool, limit int) ([]model.Celebrity, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT id, name, name_telugu, wikidata_id, tmdb_id, imdb_id, type,
		occupations, popularity_score, tmdb_popularity, trend_score, birth_date,
		wikipedia_url, discovery_source, sources, is_active, discovered_at, last_seen_at
		FROM celebrities`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY normalized_name LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list celebrities")
	}
	defer rows.Close()

	var celebs []model.Celebrity
	for rows.Next() {
		var c model.Celebrity
		var occJSON, srcJSON []byte
		var typ, source string
		if err := rows.Scan(
			&c.ID, &c.Name, &c.NameTelugu, &c.WikidataID, &c.TMDBID, &c.IMDBID, &typ,
			&occJSON, &c.PopularityScore, &c.TMDBPopularity, &c.TrendScore, &c.BirthDate,
			&c.WikipediaURL, &source, &srcJSON, &c.IsActive, &c.DiscoveredAt, &c.LastSeenAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan celebrity")
		}
		c.Type = model.EntityType(typ)
		c.Source = model.DiscoverySource(source)
		if len(occJSON) > 0 {
			if err := json.Unmarshal(occJSON, &c.Occupations); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode occupations for %s", c.Name)
			}
		}
		if len(srcJSON) > 0 {
			if err := json.Unmarshal(srcJSON, &c.Sources); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode sources for %s", c.Name)
			}
		}
		celebs = append(celebs, c)
	}
	return celebs, eris.Wrap(rows.Err(), "postgres: iterate celebrities")
}

// DeactivateCelebrity soft-deactivates an entity. This is the only way an
// entity leaves the pipeline; rows are never deleted.
func (s *PostgresStore) DeactivateCelebrity(ctx context.Context, mergeKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE celebrities SET is_active = false, last_seen_at = now() WHERE normalized_name = $1`,
		mergeKey,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: deactivate %s", mergeKey)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: no celebrity with key %s", mergeKey)
	}
	return nil
}

func (s *PostgresStore) UpsertSocialProfiles(ctx context.Context, mergeKey string, profiles []model.SocialProfile) (int64, error) {
	if len(profiles) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(profiles))
	for i, p := range profiles {
		rows[i] = []any{mergeKey, p.Platform, p.Handle, p.URL, p.ConfidenceScore, p.Verified}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "celebrity_social_profiles",
		Columns:      []string{"celebrity_key", "platform", "handle", "url", "confidence_score", "verified"},
		ConflictKeys: []string{"celebrity_key", "platform"},
	}, rows)
}

// UpsertContent writes a content candidate keyed by
// (celebrity, platform, url), which makes duplicate publication under
// repeated runs structurally impossible.
func (s *PostgresStore) UpsertContent(ctx context.Context, c model.ContentCandidate) error {
	key := model.NormalizeName(c.CelebrityName)
	if key == "" {
		return eris.New("postgres: content candidate without celebrity name")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hot_media
			(celebrity_key, celebrity_name, platform, url, title, caption, status, blocked_reason, trending_score, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (celebrity_key, platform, url) DO UPDATE SET
			title = EXCLUDED.title,
			caption = EXCLUDED.caption,
			status = EXCLUDED.status,
			blocked_reason = EXCLUDED.blocked_reason,
			updated_at = now()`,
		key, c.CelebrityName, c.Platform, c.URL, c.Title, c.Caption,
		string(c.Status), c.BlockedReason, c.TrendingScore, c.PublishedAt,
	)
	return eris.Wrapf(err, "postgres: upsert content %s/%s", key, c.Platform)
}

func (s *PostgresStore) UpdateContentStatus(ctx context.Context, id int64, status model.ContentStatus, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE hot_media SET status = $2, blocked_reason = $3, updated_at = now() WHERE id = $1`,
		id, string(status), reason,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update content status %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: no content with id %d", id)
	}
	return nil
}

func (s *PostgresStore) ListContent(ctx context.Context, filter ContentFilter) ([]model.ContentCandidate, error) {
	query := `SELECT id, celebrity_key, celebrity_name, platform, url, title, caption,
		status, blocked_reason, views, likes, shares, clicks, trending_score,
		published_at, created_at, updated_at FROM hot_media WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.CelebrityKey != "" {
		args = append(args, filter.CelebrityKey)
		query += ` AND celebrity_key = $` + strconv.Itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query += ` ORDER BY id LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list content")
	}
	defer rows.Close()

	var out []model.ContentCandidate
	for rows.Next() {
		var c model.ContentCandidate
		var key, status string
		if err := rows.Scan(
			&c.ID, &key, &c.CelebrityName, &c.Platform, &c.URL, &c.Title, &c.Caption,
			&status, &c.BlockedReason, &c.Views, &c.Likes, &c.Shares, &c.Clicks,
			&c.TrendingScore, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan content")
		}
		c.Status = model.ContentStatus(status)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate content")
}

func (s *PostgresStore) UpdateTrendingScore(ctx context.Context, id int64, score float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE hot_media SET trending_score = $2, updated_at = now() WHERE id = $1`,
		id, score,
	)
	return eris.Wrapf(err, "postgres: update trending score %d", id)
}

func (s *PostgresStore) UpsertImageMetadata(ctx context.Context, mergeKey string, images []model.ImageSourceMetadata) (int64, error) {
	if len(images) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(images))
	for i, img := range images {
		fetchedAt := img.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		rows[i] = []any{mergeKey, img.Platform, img.URL, string(img.Type), string(img.License), img.Confidence, fetchedAt}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "media_entities",
		Columns:      []string{"celebrity_key", "platform", "url", "type", "license", "confidence", "fetched_at"},
		ConflictKeys: []string{"celebrity_key", "url"},
	}, rows)
}

// RecordEngagement appends the telemetry event and accrues the counters
// on the content row in one transaction.
func (s *PostgresStore) RecordEngagement(ctx context.Context, rec model.EngagementRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin engagement tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO engagement_events (content_id, views, likes, shares, clicks, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ContentID, rec.Views, rec.Likes, rec.Shares, rec.Clicks, recordedAt,
	); err != nil {
		return eris.Wrap(err, "postgres: insert engagement event")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE hot_media SET
			views = views + $2, likes = likes + $3,
			shares = shares + $4, clicks = clicks + $5,
			updated_at = now()
		WHERE id = $1`,
		rec.ContentID, rec.Views, rec.Likes, rec.Shares, rec.Clicks,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: accrue engagement")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: no content with id %d", rec.ContentID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit engagement tx")
}

func (s *PostgresStore) SaveTrendBoosts(ctx context.Context, boosts map[string]float64) error {
	for keyword, boost := range boosts {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO trend_inputs (keyword, boost, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (keyword) DO UPDATE SET boost = EXCLUDED.boost, updated_at = now()`,
			keyword, boost,
		); err != nil {
			return eris.Wrapf(err, "postgres: save trend boost %s", keyword)
		}
	}
	return nil
}

func (s *PostgresStore) ResetLearningState(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM trend_inputs`)
	return eris.Wrap(err, "postgres: reset learning state")
}

func (s *PostgresStore) LoadTrendBoosts(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `SELECT keyword, boost FROM trend_inputs`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load trend boosts")
	}
	defer rows.Close()

	boosts := make(map[string]float64)
	for rows.Next() {
		var keyword string
		var boost float64
		if err := rows.Scan(&keyword, &boost); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trend boost")
		}
		boosts[keyword] = boost
	}
	return boosts, eris.Wrap(rows.Err(), "postgres: iterate trend boosts")
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
