package isbn

import (
	"context"
	"net/url"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/cache"
	"github.com/HazeMiya/ai-2024/internal/httpclient"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks searches the Google Books volumes API.
type GoogleBooks struct {
	apiKey     string
	baseURL    string
	httpClient httpclient.HTTPDoer
}

var _ Source = (*GoogleBooks)(nil)

// GoogleBooksOption configures a GoogleBooks source.
type GoogleBooksOption func(*GoogleBooks)

// WithGoogleBooksBaseURL overrides the API base URL.
func WithGoogleBooksBaseURL(base string) GoogleBooksOption {
	return func(g *GoogleBooks) {
		if base != "" {
			g.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithGoogleBooksHTTPClient sets a custom HTTP client.
func WithGoogleBooksHTTPClient(c httpclient.HTTPDoer) GoogleBooksOption {
	return func(g *GoogleBooks) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// NewGoogleBooks creates a Google Books source. apiKey may be empty.
func NewGoogleBooks(apiKey string, opts ...GoogleBooksOption) *GoogleBooks {
	g := &GoogleBooks{
		apiKey:     apiKey,
		baseURL:    googleBooksBaseURL,
		httpClient: httpclient.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the human-readable name of this source.
func (g *GoogleBooks) Name() string {
	return "Google Books"
}

// googleBooksResponse matches the part of the volumes response we read.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Candidates returns the ISBN_10 and ISBN_13 identifiers of every volume, in order.
func (g *GoogleBooks) Candidates(ctx context.Context, title, author string) ([]string, error) {
	return lookupCached(cache.GoogleBooksTable, title, author, func() ([]string, error) {
		params := url.Values{"q": {"intitle:" + title + " inauthor:" + author}}
		if g.apiKey != "" {
			params.Set("key", g.apiKey)
		}

		var result googleBooksResponse
		if err := httpclient.GetJSON(ctx, g.httpClient, "google books", httpclient.BuildURL(g.baseURL, "/volumes", params), &result); err != nil {
			return nil, err
		}

		var ids []string
		for _, item := range result.Items {
			for _, id := range item.VolumeInfo.IndustryIdentifiers {
				if id.Type == "ISBN_10" || id.Type == "ISBN_13" {
					ids = append(ids, id.Identifier)
				}
			}
		}
		return ids, nil
	})
}
