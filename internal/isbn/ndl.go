package isbn

import (
	"context"
	"net/url"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/cache"
	"github.com/HazeMiya/ai-2024/internal/httpclient"
)

const defaultNDLBaseURL = "https://ndlsearch.ndl.go.jp/api/opensearch"

// NDL searches the National Diet Library OpenSearch catalogue.
type NDL struct {
	baseURL    string
	httpClient httpclient.HTTPDoer
}

var _ Source = (*NDL)(nil)

// NDLOption configures an NDL source.
type NDLOption func(*NDL)

// WithNDLBaseURL overrides the OpenSearch endpoint.
func WithNDLBaseURL(base string) NDLOption {
	return func(n *NDL) {
		if base != "" {
			n.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithNDLHTTPClient sets a custom HTTP client.
func WithNDLHTTPClient(c httpclient.HTTPDoer) NDLOption {
	return func(n *NDL) {
		if c != nil {
			n.httpClient = c
		}
	}
}

// NewNDL creates an NDL catalogue source.
func NewNDL(opts ...NDLOption) *NDL {
	n := &NDL{
		baseURL:    defaultNDLBaseURL,
		httpClient: httpclient.New(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the human-readable name of this source.
func (n *NDL) Name() string {
	return "NDL"
}

// ndlFeed is the subset of the OpenSearch RSS response that carries identifiers.
type ndlFeed struct {
	Items []struct {
		ISBNs []string `xml:"http://ndl.go.jp/dcndl/terms/ ISBN"`
	} `xml:"channel>item"`
}

// Candidates returns every dcndl:ISBN of every result item, in order.
func (n *NDL) Candidates(ctx context.Context, title, author string) ([]string, error) {
	return lookupCached(cache.NDLTable, title, author, func() ([]string, error) {
		params := url.Values{
			"cnt":     {"20"},
			"title":   {title},
			"creator": {author},
		}

		var feed ndlFeed
		if err := httpclient.GetXML(ctx, n.httpClient, "ndl", httpclient.BuildURL(n.baseURL, "", params), &feed); err != nil {
			return nil, err
		}

		var ids []string
		for _, item := range feed.Items {
			for _, id := range item.ISBNs {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		}
		return ids, nil
	})
}
