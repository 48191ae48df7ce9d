// Package commons provides a client for the Wikimedia Commons imageinfo
// API, used to discover event and press images with explicit licenses.
package commons

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/resilience"
)

const defaultBaseURL = "https://commons.wikimedia.org/w/api.php"

// ImageResult is one image found via generator=search.
type ImageResult struct {
	Title   string
	URL     string
	License model.LicenseTier
}

// Client searches Wikimedia Commons for images.
type Client interface {
	SearchImages(ctx context.Context, query string, limit int) ([]ImageResult, error)
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

// NewClient creates a Wikimedia Commons client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
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

type queryResponse struct {
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title     string      `json:"title"`
	ImageInfo []imageInfo `json:"imageinfo"`
}

type imageInfo struct {
	URL         string `json:"url"`
	ExtMetadata struct {
		LicenseShortName struct {
			Value string `json:"value"`
		} `json:"LicenseShortName"`
	} `json:"extmetadata"`
}

func (c *httpClient) SearchImages(ctx context.Context, query string, limit int) ([]ImageResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, eris.New("commons: empty search query")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"action":       {"query"},
		"format":       {"json"},
		"generator":    {"search"},
		"gsrsearch":    {query},
		"gsrnamespace": {"6"},
		"gsrlimit":     {strconv.Itoa(limit)},
		"prop":         {"imageinfo"},
		"iiprop":       {"url|extmetadata"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "commons: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "commons: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "commons: read response")
	}

	if resp.StatusCode != http.StatusOK {
		reqErr := eris.Errorf("commons: search returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(reqErr, resp.StatusCode)
		}
		return nil, reqErr
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "commons: unmarshal response")
	}

	images := make([]ImageResult, 0, len(result.Query.Pages))
	for _, p := range result.Query.Pages {
		if len(p.ImageInfo) == 0 || p.ImageInfo[0].URL == "" {
			continue
		}
		info := p.ImageInfo[0]
		images = append(images, ImageResult{
			Title:   p.Title,
			URL:     info.URL,
			License: LicenseTierFor(info.ExtMetadata.LicenseShortName.Value),
		})
	}
	return images, nil
}

// LicenseTierFor maps a Commons license short name to a license tier.
// Unrecognized licenses map to unknown, which downstream treats as the
// lowest-confidence tier.
func LicenseTierFor(shortName string) model.LicenseTier {
	name := strings.ToLower(strings.TrimSpace(shortName))
	switch {
	case name == "":
		return model.LicenseUnknown
	case strings.Contains(name, "public domain") || name == "pd" || strings.HasPrefix(name, "cc0"):
		return model.LicensePublicDomain
	case strings.Contains(name, "cc by-sa") || strings.Contains(name, "cc-by-sa"):
		return model.LicenseCCBYSA
	case strings.Contains(name, "cc by") || strings.Contains(name, "cc-by"):
		return model.LicenseCCBY
	default:
		return model.LicenseUnknown
	}
}
