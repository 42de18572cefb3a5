package isbn

import (
	"context"
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
	"github.com/HazeMiya/ai-2024/internal/record"
	"github.com/HazeMiya/ai-2024/internal/stage"
)

// ResolveTable fills the ISBN10 column of every row with a title and author.
// Rows missing either are left untouched. Unresolved rows get an empty value.
func (r *Resolver) ResolveTable(ctx context.Context, t *csvutil.Table, limiter *ratelimit.Limiter) (stage.Stats, error) {
	stats := stage.Stats{Name: "isbn", Total: t.Len()}
	t.AddColumn(record.ColISBN)

	for i := 0; i < t.Len(); i++ {
		rec := record.FromRow(t, i)
		if rec.Title == "" || rec.Author == "" {
			slog.Debug("Skipping row without title or author", "row", i+1)
			stats.Skipped++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		id, ok := r.Resolve(ctx, rec.Title, rec.Author)
		t.Set(i, record.ColISBN, id)
		stats.Processed++
		if !ok {
			stats.Failed++
			slog.Debug("No identifier found", "title", rec.Title, "author", rec.Author)
		}

		stage.LogProgress("identifiers", stats.Processed+stats.Skipped, stats.Total, 10)
	}

	return stats, nil
}
