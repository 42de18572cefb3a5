package isbn

import (
	"context"
	"log/slog"
	"strings"
)

// Resolver tries each source in order and returns the first identifier that
// survives Normalize.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over sources, primary first.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns the identifier for (title, author), or false when no source
// produced a usable one. Source failures count as misses for that source.
func (r *Resolver) Resolve(ctx context.Context, title, author string) (string, bool) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return "", false
	}

	for _, src := range r.sources {
		candidates, err := src.Candidates(ctx, title, author)
		if err != nil {
			slog.Debug("Catalogue lookup failed", "source", src.Name(), "title", title, "error", err)
			continue
		}
		for _, raw := range candidates {
			if id, ok := Normalize(raw); ok {
				slog.Debug("Identifier resolved", "source", src.Name(), "title", title, "isbn", id)
				return id, true
			}
		}
	}
	return "", false
}
