package isbn

import (
	"context"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/cache"
)

// Source is a catalogue that can be searched by title and author.
type Source interface {
	// Name returns the human-readable name of the catalogue.
	Name() string

	// Candidates returns raw identifiers in the catalogue's result order.
	// An empty slice means the catalogue has no match.
	Candidates(ctx context.Context, title, author string) ([]string, error)
}

// cachedCandidates is the persisted form of one catalogue search.
type cachedCandidates struct {
	Identifiers []string `json:"identifiers"`
	NotFound    bool     `json:"not_found"`
}

func cacheKey(title, author string) string {
	return strings.TrimSpace(title) + "|" + strings.TrimSpace(author)
}

// lookupCached runs search through the persistent cache table.
func lookupCached(table, title, author string, search func() ([]string, error)) ([]string, error) {
	result, _, err := cache.GetOrFetchWithTTL(table, cacheKey(title, author), func() (*cachedCandidates, error) {
		ids, err := search()
		if err != nil {
			return nil, err
		}
		return &cachedCandidates{Identifiers: ids, NotFound: len(ids) == 0}, nil
	}, cache.SelectNegativeCacheTTL(func(r *cachedCandidates) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}
	return result.Identifiers, nil
}
