// Package tmdb provides a client for The Movie Database REST API. The API
// key is optional: without one the client is soft-disabled and every call
// returns empty results rather than an error.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/resilience"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Person is a person result from search/person.
type Person struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Popularity         float64 `json:"popularity"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
}

// Image is one profile or tagged image reference.
type Image struct {
	FilePath    string  `json:"file_path"`
	VoteAverage float64 `json:"vote_average"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// ExternalIDs holds cross-platform identifiers for a person.
type ExternalIDs struct {
	IMDBID       string `json:"imdb_id"`
	InstagramID  string `json:"instagram_id"`
	TwitterID    string `json:"twitter_id"`
	FacebookID   string `json:"facebook_id"`
	TikTokID     string `json:"tiktok_id"`
	YouTubeID    string `json:"youtube_id"`
	WikidataID   string `json:"wikidata_id"`
}

// Client performs TMDB API operations.
type Client interface {
	// Enabled reports whether an API key was configured. When false, every
	// call returns empty results and a nil error.
	Enabled() bool
	SearchPerson(ctx context.Context, query string) ([]Person, error)
	PersonImages(ctx context.Context, personID int) ([]Image, error)
	PersonTaggedImages(ctx context.Context, personID int) ([]Image, error)
	PersonExternalIDs(ctx context.Context, personID int) (*ExternalIDs, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a TMDB client. An empty apiKey yields a soft-disabled
// client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *httpClient) SearchPerson(ctx context.Context, query string) ([]Person, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var result struct {
		Results []Person `json:"results"`
	}
	params := url.Values{"query": {query}, "include_adult": {"false"}}
	if err := c.get(ctx, "/search/person", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *httpClient) PersonImages(ctx context.Context, personID int) ([]Image, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var result struct {
		Profiles []Image `json:"profiles"`
	}
	if err := c.get(ctx, fmt.Sprintf("/person/%d/images", personID), nil, &result); err != nil {
		return nil, err
	}
	return result.Profiles, nil
}

func (c *httpClient) PersonTaggedImages(ctx context.Context, personID int) ([]Image, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var result struct {
		Results []Image `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/person/%d/tagged_images", personID), nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *httpClient) PersonExternalIDs(ctx context.Context, personID int) (*ExternalIDs, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var result ExternalIDs
	if err := c.get(ctx, fmt.Sprintf("/person/%d/external_ids", personID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrapf(err, "tmdb: create request %s", path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "tmdb: send request %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "tmdb: read response %s", path)
	}

	if resp.StatusCode != http.StatusOK {
		reqErr := eris.Errorf("tmdb: %s returned %d", path, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(reqErr, resp.StatusCode)
		}
		return reqErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "tmdb: unmarshal response %s", path)
	}
	return nil
}
