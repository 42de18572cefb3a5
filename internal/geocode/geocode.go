// Package geocode resolves place names to coordinates with the GSI address search.
package geocode

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/cache"
	"github.com/HazeMiya/ai-2024/internal/httpclient"
	"github.com/HazeMiya/ai-2024/internal/record"
)

const defaultBaseURL = "https://msearch.gsi.go.jp/address-search/AddressSearch"

// Locator resolves place names.
type Locator interface {
	Geocode(ctx context.Context, place string) (record.Coordinates, bool)
}

// GSI queries the Geospatial Information Authority of Japan address search.
type GSI struct {
	baseURL    string
	httpClient httpclient.HTTPDoer
}

var _ Locator = (*GSI)(nil)

// Option is a functional option for configuring GSI.
type Option func(*GSI)

// WithBaseURL overrides the address search endpoint.
func WithBaseURL(base string) Option {
	return func(g *GSI) {
		if base != "" {
			g.baseURL = base
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c httpclient.HTTPDoer) Option {
	return func(g *GSI) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// NewGSI creates a GSI locator.
func NewGSI(opts ...Option) *GSI {
	g := &GSI{baseURL: defaultBaseURL, httpClient: httpclient.New()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Skippable reports whether place carries no usable location.
func Skippable(place string) bool {
	place = strings.TrimSpace(place)
	return place == "" || place == record.SettingUnknown
}

type feature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
}

// cachedPoint is the persisted form of one search. Found is false for misses.
type cachedPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Found bool    `json:"found"`
}

// Geocode returns the coordinates of the first candidate for place.
// Blank and 不明 places are not looked up. Any failure is a miss.
func (g *GSI) Geocode(ctx context.Context, place string) (record.Coordinates, bool) {
	place = strings.TrimSpace(place)
	if Skippable(place) {
		return record.Coordinates{}, false
	}

	point, _, err := cache.GetOrFetchWithTTL(cache.GSITable, place, func() (cachedPoint, error) {
		var features []feature
		endpoint := g.baseURL + "?" + url.Values{"q": {place}}.Encode()
		if err := httpclient.GetJSON(ctx, g.httpClient, "gsi", endpoint, &features); err != nil {
			return cachedPoint{}, err
		}
		if len(features) == 0 || len(features[0].Geometry.Coordinates) < 2 {
			return cachedPoint{}, nil
		}
		// GeoJSON order is [lon, lat]
		c := features[0].Geometry.Coordinates
		return cachedPoint{Lat: c[1], Lon: c[0], Found: true}, nil
	}, cache.SelectNegativeCacheTTL(func(p cachedPoint) bool { return !p.Found }))
	if err != nil {
		slog.Debug("Geocoding failed", "place", place, "error", err)
		return record.Coordinates{}, false
	}
	if !point.Found {
		return record.Coordinates{}, false
	}
	return record.Coordinates{Lat: point.Lat, Lon: point.Lon}, true
}
