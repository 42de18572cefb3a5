package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/HazeMiya/ai-2024/internal/errors"
)

// Options tunes the lookup heuristics.
type Options struct {
	TopK               int
	RequireAuthor      bool
	TitleFallback      bool
	AuthorPageFallback bool
	Infobox            bool
	SummaryMode        string
	SummaryMaxRunes    int
	Rules              RuleSet
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		TopK:            3,
		RequireAuthor:   true,
		Infobox:         true,
		SummaryMode:     SummaryFirstLine,
		SummaryMaxRunes: 500,
		Rules:           DefaultRules(),
	}
}

// Enricher looks up novels and memoizes the outcome per (title, author).
// It is safe for concurrent use; concurrent lookups of the same key share
// one underlying call.
type Enricher struct {
	api      API
	opts     Options
	matcher  *Matcher
	cache    *Cache
	inflight singleflight.Group
}

// NewEnricher creates an enricher over api.
func NewEnricher(api API, opts Options) (*Enricher, error) {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	matcher, err := NewMatcher(opts.Rules, opts.RequireAuthor)
	if err != nil {
		return nil, fmt.Errorf("building matcher: %w", err)
	}
	names := make([]string, 0, len(matcher.Rules()))
	for _, r := range matcher.Rules() {
		names = append(names, r.Name)
	}
	slog.Debug("Article rules", "rules", names, "require_author", opts.RequireAuthor)
	return &Enricher{
		api:     api,
		opts:    opts,
		matcher: matcher,
		cache:   NewCache(),
	}, nil
}

// Cache exposes the memo table.
func (e *Enricher) Cache() *Cache {
	return e.cache
}

// Lookup returns the enrichment result for (title, author). Found and
// not-found results are cached; error results are not.
func (e *Enricher) Lookup(ctx context.Context, title, author string) Result {
	key := Key{Title: strings.TrimSpace(title), Author: strings.TrimSpace(author)}
	if key.Title == "" {
		return errorResult(apperrors.NewMissingInputError("title"))
	}

	if r, ok := e.cache.Get(key); ok {
		return r
	}

	v, _, _ := e.inflight.Do(key.String(), func() (any, error) {
		if r, ok := e.cache.Get(key); ok {
			return r, nil
		}
		r := e.lookup(ctx, key)
		if r.Status == StatusError {
			return r, nil
		}
		return e.cache.Add(key, r), nil
	})
	return v.(Result)
}

func (e *Enricher) lookup(ctx context.Context, key Key) Result {
	hits, err := e.api.Search(ctx, joinQuery(key.Title, key.Author, e.opts.Rules.SearchKeyword), e.opts.TopK)
	if err != nil {
		return errorResult(err)
	}
	if len(hits) == 0 && e.opts.TitleFallback && key.Author != "" {
		slog.Debug("Retrying search without author", "title", key.Title)
		if hits, err = e.api.Search(ctx, joinQuery(key.Title, e.opts.Rules.SearchKeyword), e.opts.TopK); err != nil {
			return errorResult(err)
		}
	}
	if len(hits) == 0 {
		return notFound(ReasonNoResults)
	}

	for _, hit := range hits[:min(len(hits), e.opts.TopK)] {
		page, err := e.api.Page(ctx, hit.Title)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return errorResult(ctxErr)
			}
			slog.Debug("Skipping candidate page", "title", key.Title, "candidate", hit.Title, "error", err)
			continue
		}
		ok, failed := e.matcher.Evaluate(Candidate{Title: key.Title, Author: key.Author, Page: page})
		if !ok {
			slog.Debug("Candidate rejected", "title", key.Title, "candidate", page.Title, "rule", failed, "snippet", hit.Snippet)
			continue
		}
		return e.fromArticle(ctx, page)
	}

	if e.opts.AuthorPageFallback && key.Author != "" {
		if r, ok := e.fromAuthorPage(ctx, key); ok {
			return r
		}
	}
	if err := ctx.Err(); err != nil {
		return errorResult(err)
	}
	return notFound(ReasonNoMatch)
}

func (e *Enricher) fromArticle(ctx context.Context, page Page) Result {
	lines := e.matcher.CleanLines(page.Extract)

	body := page.Extract
	if e.opts.Infobox {
		fields, err := e.api.Infobox(ctx, page.Title)
		switch {
		case err == nil:
			var sb strings.Builder
			for _, f := range fields {
				fmt.Fprintf(&sb, "%s：%s\n", f.Label, f.Value)
			}
			// infobox rows take precedence over prose mentions
			body = sb.String() + body
		case errors.Is(err, context.Canceled):
			return errorResult(err)
		default:
			slog.Debug("Infobox unavailable", "page", page.Title, "error", err)
		}
	}

	return Result{
		Status:    StatusFound,
		Synopsis:  Summarize(lines, e.opts.SummaryMode, e.opts.SummaryMaxRunes),
		Facts:     e.matcher.ExtractFacts(body),
		URL:       page.URL,
		PageTitle: page.Title,
		Source:    SourceArticle,
	}
}

func (e *Enricher) fromAuthorPage(ctx context.Context, key Key) (Result, bool) {
	page, err := e.api.Page(ctx, key.Author)
	if err != nil {
		slog.Debug("Author page unavailable", "author", key.Author, "error", err)
		return Result{}, false
	}
	paragraphs := paragraphsMentioning(page.Extract, key.Title)
	if len(paragraphs) == 0 {
		return Result{}, false
	}
	return Result{
		Status:    StatusFound,
		Synopsis:  Summarize(paragraphs, SummaryFull, e.opts.SummaryMaxRunes),
		Facts:     map[string]string{},
		URL:       page.URL,
		PageTitle: page.Title,
		Source:    SourceAuthorPage,
	}, true
}

func joinQuery(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
