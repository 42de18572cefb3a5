// Package wiki finds the encyclopedia article describing a novel and turns it
// into a synopsis and a handful of bibliographic facts.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/HazeMiya/ai-2024/internal/httpclient"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
)

// ErrPageNotFound is returned when the requested page does not exist.
var ErrPageNotFound = errors.New("page not found")

// SearchHit is one full-text search result.
type SearchHit struct {
	Title   string
	Snippet string
}

// Page is the plain-text rendering of an article.
type Page struct {
	Title   string
	URL     string
	Extract string
}

// InfoboxField is one label/value row of an article's infobox.
type InfoboxField struct {
	Label string
	Value string
}

// API is the subset of the MediaWiki API the enricher needs.
type API interface {
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
	Page(ctx context.Context, title string) (Page, error)
	Infobox(ctx context.Context, title string) ([]InfoboxField, error)
}

// Client talks to one language edition of Wikipedia.
type Client struct {
	endpoint    string
	httpClient  httpclient.HTTPDoer
	rateLimiter *ratelimit.Limiter
}

var _ API = (*Client)(nil)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithEndpoint overrides the api.php URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(doer httpclient.HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithRateLimiter throttles every API call.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.rateLimiter = limiter
	}
}

// NewClient creates a client for the given language edition ("ja", "en", ...).
func NewClient(lang string, opts ...Option) *Client {
	if lang == "" {
		lang = "ja"
	}
	c := &Client{
		endpoint:   fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		httpClient: httpclient.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (c *Client) get(ctx context.Context, params url.Values, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("format", "json")
	params.Set("formatversion", "2")
	return httpclient.GetJSON(ctx, c.httpClient, "wikipedia", c.endpoint+"?"+params.Encode(), target)
}

// Search runs a full-text search and returns at most limit hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	var resp struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprint(limit)},
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wikipedia search: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	hits := make([]SearchHit, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		hits = append(hits, SearchHit{Title: s.Title, Snippet: htmlText(s.Snippet)})
	}
	return hits, nil
}

// Page fetches the plain-text extract and canonical URL of title.
// Redirects are followed.
func (c *Client) Page(ctx context.Context, title string) (Page, error) {
	var resp struct {
		Query struct {
			Pages []struct {
				Title   string `json:"title"`
				Missing bool   `json:"missing"`
				Invalid bool   `json:"invalid"`
				Extract string `json:"extract"`
				FullURL string `json:"fullurl"`
			} `json:"pages"`
		} `json:"query"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":          {"query"},
		"prop":            {"extracts|info"},
		"explaintext":     {"1"},
		"exsectionformat": {"plain"},
		"inprop":          {"url"},
		"redirects":       {"1"},
		"titles":          {title},
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return Page{}, err
	}
	if resp.Error != nil {
		return Page{}, fmt.Errorf("wikipedia page: %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing || resp.Query.Pages[0].Invalid {
		return Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}

	p := resp.Query.Pages[0]
	return Page{Title: p.Title, URL: p.FullURL, Extract: p.Extract}, nil
}

// Infobox returns the rows of the first infobox table of title's lead section.
func (c *Client) Infobox(ctx context.Context, title string) ([]InfoboxField, error) {
	var resp struct {
		Parse struct {
			Text string `json:"text"`
		} `json:"parse"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":    {"parse"},
		"page":      {title},
		"prop":      {"text"},
		"section":   {"0"},
		"redirects": {"1"},
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
		}
		return nil, fmt.Errorf("wikipedia parse: %s: %s", resp.Error.Code, resp.Error.Info)
	}
	return ParseInfobox(resp.Parse.Text)
}

// ParseInfobox reads label/value rows from the first table.infobox in html.
func ParseInfobox(html string) ([]InfoboxField, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing infobox html: %w", err)
	}
	doc.Find("sup.reference, style, .mw-editsection").Remove()

	var fields []InfoboxField
	doc.Find("table.infobox").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := collapseSpace(row.ChildrenFiltered("th").First().Text())
		value := collapseSpace(row.ChildrenFiltered("td").First().Text())
		if label != "" && value != "" {
			fields = append(fields, InfoboxField{Label: label, Value: value})
		}
	})
	return fields, nil
}

// htmlText strips markup from a search snippet.
func htmlText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
