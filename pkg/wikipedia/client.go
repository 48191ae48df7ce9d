// Package wikipedia provides a client for the Wikipedia REST page summary
// endpoint, used to fetch profile images and short descriptions.
package wikipedia

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/resilience"
)

const defaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

// Summary is the REST page summary, decoded defensively: absent fields
// stay zero values.
type Summary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Thumbnail   *Image `json:"thumbnail"`
	OriginalImage *Image `json:"originalimage"`
}

// Image is an image reference within a summary.
type Image struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Client fetches Wikipedia page summaries.
type Client interface {
	PageSummary(ctx context.Context, title string) (*Summary, error)
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
	baseURL string
	http    *http.Client
}

// NewClient creates a Wikipedia REST client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) PageSummary(ctx context.Context, title string) (*Summary, error) {
	if strings.TrimSpace(title) == "" {
		return nil, eris.New("wikipedia: empty page title")
	}
	escaped := url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/page/summary/"+escaped, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wikipedia: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wikipedia: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wikipedia: read response")
	}

	if resp.StatusCode != http.StatusOK {
		reqErr := eris.Errorf("wikipedia: summary for %q returned %d", title, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(reqErr, resp.StatusCode)
		}
		return nil, reqErr
	}

	var summary Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, eris.Wrap(err, "wikipedia: unmarshal response")
	}
	return &summary, nil
}
