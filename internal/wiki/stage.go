package wiki

import (
	"context"
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/record"
	"github.com/HazeMiya/ai-2024/internal/stage"
)

// OutputColumns are added by the enrichment stage.
var OutputColumns = []string{
	record.ColSynopsis,
	record.ColWikipediaURL,
	record.ColFacts,
	record.ColWikiStatus,
	record.ColWikiNote,
}

// EnrichTable looks up every row with a title and writes the result columns.
// Rows without a title are skipped and keep empty result columns.
func EnrichTable(ctx context.Context, t *csvutil.Table, l Looker, workers int) (stage.Stats, error) {
	stats := stage.Stats{Name: "wiki", Total: t.Len()}
	for _, col := range OutputColumns {
		t.AddColumn(col)
	}

	var keys []Key
	var rows []int
	for i := 0; i < t.Len(); i++ {
		rec := record.FromRow(t, i)
		if rec.Title == "" {
			stats.Skipped++
			continue
		}
		keys = append(keys, Key{Title: rec.Title, Author: rec.Author})
		rows = append(rows, i)
	}

	results := EnrichAll(ctx, l, keys, workers, func(done, total int, key Key, r Result) {
		if !r.Found() {
			slog.Debug("No article", "title", key.Title, "author", key.Author, "status", r.Status, "note", r.Note())
		}
		stage.LogProgress("articles", done, total, 10)
	})

	for j, r := range results {
		i := rows[j]
		stats.Processed++
		if r.Status == StatusError {
			stats.Failed++
		}
		t.Set(i, record.ColSynopsis, r.Synopsis)
		t.Set(i, record.ColWikipediaURL, r.URL)
		if err := record.SetFacts(t, i, r.Facts); err != nil {
			return stats, err
		}
		t.Set(i, record.ColWikiStatus, string(r.Status))
		t.Set(i, record.ColWikiNote, r.Note())
	}

	return stats, ctx.Err()
}
