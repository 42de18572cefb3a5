package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

// fakeAPI serves canned pages and counts calls.
type fakeAPI struct {
	mu        sync.Mutex
	hits      map[string][]SearchHit
	pages     map[string]Page
	infobox   map[string][]InfoboxField
	searchErr error
	searches  []string
	pageCalls int
	onSearch  func(query string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		hits:    map[string][]SearchHit{},
		pages:   map[string]Page{},
		infobox: map[string][]InfoboxField{},
	}
}

func (f *fakeAPI) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	if f.onSearch != nil {
		f.onSearch(query)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	hits := f.hits[query]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeAPI) Page(_ context.Context, title string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	p, ok := f.pages[title]
	if !ok {
		return Page{}, ErrPageNotFound
	}
	return p, nil
}

func (f *fakeAPI) Infobox(_ context.Context, title string) ([]InfoboxField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields, ok := f.infobox[title]
	if !ok {
		return nil, ErrPageNotFound
	}
	return fields, nil
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}
