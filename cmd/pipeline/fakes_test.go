package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HazeMiya/ai-2024/internal/geocode"
	"github.com/HazeMiya/ai-2024/internal/isbn"
	"github.com/HazeMiya/ai-2024/internal/llm"
	"github.com/HazeMiya/ai-2024/internal/wiki"
)

type catalogue map[string]string

func (c catalogue) Name() string { return "fake" }

func (c catalogue) Candidates(_ context.Context, title, _ string) ([]string, error) {
	if id, ok := c[title]; ok {
		return []string{id}, nil
	}
	return nil, nil
}

// encyclopedia serves one article per title, named "<title> (小説)".
type encyclopedia struct {
	articles map[string]string
	searches atomic.Int32
}

func (e *encyclopedia) Search(_ context.Context, query string, _ int) ([]wiki.SearchHit, error) {
	e.searches.Add(1)
	for title := range e.articles {
		if strings.HasPrefix(query, title+" ") {
			return []wiki.SearchHit{{Title: title + " (小説)"}}, nil
		}
	}
	return nil, nil
}

func (e *encyclopedia) Page(_ context.Context, page string) (wiki.Page, error) {
	title := strings.TrimSuffix(page, " (小説)")
	body, ok := e.articles[title]
	if !ok {
		return wiki.Page{}, fmt.Errorf("%w: %s", wiki.ErrPageNotFound, page)
	}
	return wiki.Page{Title: page, URL: "https://ja.wikipedia.org/wiki/" + title, Extract: body}, nil
}

func (e *encyclopedia) Infobox(context.Context, string) ([]wiki.InfoboxField, error) {
	return nil, nil
}

// scriptedOracle answers with the reply whose key occurs in the prompt.
type scriptedOracle struct {
	replies map[string]string
	calls   atomic.Int32
}

func (o *scriptedOracle) Name() string { return "scripted" }

func (o *scriptedOracle) Complete(_ context.Context, prompt string) (string, error) {
	o.calls.Add(1)
	for key, reply := range o.replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return "", nil
}

// gsiServer answers address searches in GeoJSON [lon, lat] order.
func gsiServer(t *testing.T, points map[string][2]float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := points[r.URL.Query().Get("q")]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = fmt.Fprintf(w, `[{"geometry":{"coordinates":[%v,%v],"type":"Point"},"properties":{"title":"x"}}]`, p[0], p[1])
	}))
	t.Cleanup(srv.Close)
	return srv
}

// useFakes swaps the service constructors for the duration of the test.
func useFakes(t *testing.T, books catalogue, enc *encyclopedia, oracle llm.Oracle, gsiURL string) {
	t.Helper()
	origISBN, origWiki, origOracle, origLocator := newISBNSources, newWikiAPI, newOracle, newLocator
	origSleeper := Sleeper
	t.Cleanup(func() {
		newISBNSources, newWikiAPI, newOracle, newLocator = origISBN, origWiki, origOracle, origLocator
		Sleeper = origSleeper
	})

	newISBNSources = func() []isbn.Source { return []isbn.Source{books} }
	newWikiAPI = func() wiki.API { return enc }
	newOracle = func() (llm.Oracle, error) { return oracle, nil }
	newLocator = func() geocode.Locator { return geocode.NewGSI(geocode.WithBaseURL(gsiURL)) }
	Sleeper = func(_ time.Duration) {}
}
