// Package wikidata provides a read-only client for the Wikidata SPARQL
// endpoint, used to discover public figures by occupation and region.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/resilience"
)

const defaultEndpoint = "https://query.wikidata.org/sparql"

// Occupation QIDs used in discovery queries.
const (
	QIDActor       = "Q33999"
	QIDTVPresenter = "Q947873"
	QIDModel       = "Q4610556"
	QIDInfluencer  = "Q110921288"
)

// QIDTeluguCinema scopes discovery to the Telugu film industry.
const QIDTeluguCinema = "Q1353874"

// Person is one SPARQL result row, decoded defensively: a binding the
// endpoint did not return stays the zero value rather than failing the row.
type Person struct {
	WikidataID   string // Q-id extracted from the entity URI
	Name         string
	BirthDate    string
	TMDBID       int
	IMDBID       string
	WikipediaURL string
}

// QueryParams filters a discovery query.
type QueryParams struct {
	OccupationQIDs []string
	IndustryQID    string
	Limit          int
}

// Client performs Wikidata SPARQL queries.
type Client interface {
	SearchPeople(ctx context.Context, params QueryParams) ([]Person, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithEndpoint overrides the default SPARQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *httpClient) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

// NewClient creates a Wikidata SPARQL client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		endpoint:  defaultEndpoint,
		userAgent: "curator-cli/1.0 (entity discovery; read-only)",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// sparqlResponse is the application/sparql-results+json envelope.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

const peopleQueryTemplate = `SELECT DISTINCT ?person ?personLabel ?birthDate ?tmdbId ?imdbId ?article WHERE {
  VALUES ?occupation { %s }
  ?person wdt:P106 ?occupation .
  ?person wdt:P27 wd:Q668 .
  %s
  OPTIONAL { ?person wdt:P569 ?birthDate . }
  OPTIONAL { ?person wdt:P4985 ?tmdbId . }
  OPTIONAL { ?person wdt:P345 ?imdbId . }
  OPTIONAL {
    ?article schema:about ?person ;
             schema:isPartOf <https://en.wikipedia.org/> .
  }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en,te" . }
} LIMIT %d`

// buildQuery renders the SPARQL query for the given params.
func buildQuery(params QueryParams) string {
	occ := make([]string, len(params.OccupationQIDs))
	for i, q := range params.OccupationQIDs {
		occ[i] = "wd:" + q
	}

	industryClause := ""
	if params.IndustryQID != "" {
		industryClause = fmt.Sprintf("?person wdt:P101 wd:%s .", params.IndustryQID)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	return fmt.Sprintf(peopleQueryTemplate, strings.Join(occ, " "), industryClause, limit)
}

func (c *httpClient) SearchPeople(ctx context.Context, params QueryParams) ([]Person, error) {
	if len(params.OccupationQIDs) == 0 {
		return nil, eris.New("wikidata: no occupation QIDs")
	}

	form := url.Values{"query": {buildQuery(params)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("wikidata: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result sparqlResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "wikidata: unmarshal response")
	}

	people := make([]Person, 0, len(result.Results.Bindings))
	for _, b := range result.Results.Bindings {
		p := Person{
			WikidataID:   qidFromURI(b["person"].Value),
			Name:         b["personLabel"].Value,
			BirthDate:    b["birthDate"].Value,
			IMDBID:       b["imdbId"].Value,
			WikipediaURL: b["article"].Value,
		}
		if raw := b["tmdbId"].Value; raw != "" {
			if id, convErr := strconv.Atoi(raw); convErr == nil {
				p.TMDBID = id
			}
		}
		if p.WikidataID == "" || p.Name == "" {
			continue
		}
		people = append(people, p)
	}

	return people, nil
}

// qidFromURI extracts "Q123" from "http://www.wikidata.org/entity/Q123".
func qidFromURI(uri string) string {
	idx := strings.LastIndex(uri, "/")
	if idx < 0 || idx == len(uri)-1 {
		return ""
	}
	id := uri[idx+1:]
	if !strings.HasPrefix(id, "Q") {
		return ""
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
