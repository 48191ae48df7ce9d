package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/store"
	"github.com/teluguvibes/curator-cli/pkg/commons"
	"github.com/teluguvibes/curator-cli/pkg/tmdb"
	"github.com/teluguvibes/curator-cli/pkg/trends"
	"github.com/teluguvibes/curator-cli/pkg/wikidata"
	"github.com/teluguvibes/curator-cli/pkg/wikipedia"
)

// fakeStore is an in-memory store.Store for orchestration tests.
type fakeStore struct {
	mu         sync.Mutex
	celebs     map[string]model.Celebrity
	profiles   map[string][]model.SocialProfile
	contents   []model.ContentCandidate
	images     map[string][]model.ImageSourceMetadata
	events     []model.EngagementRecord
	boosts     map[string]float64
	nextID     int64
	writeCalls int

	failUpserts bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		celebs:   map[string]model.Celebrity{},
		profiles: map[string][]model.SocialProfile{},
		images:   map[string][]model.ImageSourceMetadata{},
		boosts:   map[string]float64{},
	}
}

func (f *fakeStore) UpsertCelebrities(_ context.Context, celebs []model.Celebrity) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpserts {
		return 0, eris.New("store down")
	}
	f.writeCalls++
	for _, c := range celebs {
		f.celebs[c.MergeKey()] = c
	}
	return int64(len(celebs)), nil
}

func (f *fakeStore) ListCelebrities(_ context.Context, activeOnly bool, _ int) ([]model.Celebrity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Celebrity
	for _, c := range f.celebs {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) DeactivateCelebrity(_ context.Context, mergeKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.celebs[mergeKey]
	if !ok {
		return eris.Errorf("no celebrity with key %s", mergeKey)
	}
	c.IsActive = false
	f.celebs[mergeKey] = c
	return nil
}

func (f *fakeStore) UpsertSocialProfiles(_ context.Context, mergeKey string, profiles []model.SocialProfile) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	f.profiles[mergeKey] = profiles
	return int64(len(profiles)), nil
}

func (f *fakeStore) UpsertContent(_ context.Context, c model.ContentCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	for i, existing := range f.contents {
		if existing.Platform == c.Platform && existing.URL == c.URL &&
			model.NormalizeName(existing.CelebrityName) == model.NormalizeName(c.CelebrityName) {
			c.ID = existing.ID
			f.contents[i] = c
			return nil
		}
	}
	f.nextID++
	c.ID = f.nextID
	f.contents = append(f.contents, c)
	return nil
}

func (f *fakeStore) UpdateContentStatus(_ context.Context, id int64, status model.ContentStatus, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.contents {
		if f.contents[i].ID == id {
			f.contents[i].Status = status
			f.contents[i].BlockedReason = reason
			return nil
		}
	}
	return eris.Errorf("no content with id %d", id)
}

func (f *fakeStore) ListContent(_ context.Context, filter store.ContentFilter) ([]model.ContentCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ContentCandidate
	for _, c := range f.contents {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.CelebrityKey != "" && model.NormalizeName(c.CelebrityName) != filter.CelebrityKey {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) UpdateTrendingScore(_ context.Context, id int64, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.contents {
		if f.contents[i].ID == id {
			f.contents[i].TrendingScore = score
			return nil
		}
	}
	return eris.Errorf("no content with id %d", id)
}

func (f *fakeStore) UpsertImageMetadata(_ context.Context, mergeKey string, images []model.ImageSourceMetadata) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	f.images[mergeKey] = append(f.images[mergeKey], images...)
	return int64(len(images)), nil
}

func (f *fakeStore) RecordEngagement(_ context.Context, rec model.EngagementRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, rec)
	for i := range f.contents {
		if f.contents[i].ID == rec.ContentID {
			f.contents[i].Views += rec.Views
			f.contents[i].Likes += rec.Likes
			f.contents[i].Shares += rec.Shares
			f.contents[i].Clicks += rec.Clicks
			return nil
		}
	}
	return eris.Errorf("no content with id %d", rec.ContentID)
}

func (f *fakeStore) SaveTrendBoosts(_ context.Context, boosts map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	for k, v := range boosts {
		f.boosts[k] = v
	}
	return nil
}

func (f *fakeStore) LoadTrendBoosts(_ context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64, len(f.boosts))
	for k, v := range f.boosts {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) ResetLearningState(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boosts = map[string]float64{}
	return nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

// fakeWikidata returns canned people per occupation QID.
type fakeWikidata struct {
	people map[string][]wikidata.Person
	err    error
}

func (f *fakeWikidata) SearchPeople(_ context.Context, params wikidata.QueryParams) ([]wikidata.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(params.OccupationQIDs) == 0 {
		return nil, nil
	}
	return f.people[params.OccupationQIDs[0]], nil
}

// fakeTMDB serves canned person lookups.
type fakeTMDB struct {
	enabled bool
	people  map[string][]tmdb.Person
	ids     map[int]*tmdb.ExternalIDs
	images  map[int][]tmdb.Image
	tagged  map[int][]tmdb.Image
}

func (f *fakeTMDB) Enabled() bool { return f.enabled }

func (f *fakeTMDB) SearchPerson(_ context.Context, query string) ([]tmdb.Person, error) {
	return f.people[query], nil
}

func (f *fakeTMDB) PersonImages(_ context.Context, personID int) ([]tmdb.Image, error) {
	return f.images[personID], nil
}

func (f *fakeTMDB) PersonTaggedImages(_ context.Context, personID int) ([]tmdb.Image, error) {
	return f.tagged[personID], nil
}

func (f *fakeTMDB) PersonExternalIDs(_ context.Context, personID int) (*tmdb.ExternalIDs, error) {
	return f.ids[personID], nil
}

type fakeWikipedia struct {
	summaries map[string]*wikipedia.Summary
}

func (f *fakeWikipedia) PageSummary(_ context.Context, title string) (*wikipedia.Summary, error) {
	return f.summaries[title], nil
}

type fakeCommons struct {
	results []commons.ImageResult
}

func (f *fakeCommons) SearchImages(_ context.Context, _ string, _ int) ([]commons.ImageResult, error) {
	return f.results, nil
}

type fakeTrends struct {
	signals []trends.Signal
	err     error
}

func (f *fakeTrends) Signals(_ context.Context, _ []string) ([]trends.Signal, error) {
	return f.signals, f.err
}
