package classify

import (
	"context"
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
	"github.com/HazeMiya/ai-2024/internal/record"
	"github.com/HazeMiya/ai-2024/internal/stage"
)

// OutputColumns are written by the classification stage.
var OutputColumns = []string{
	record.ColGenre,
	record.ColSeason,
	record.ColAge,
	record.ColSetting,
	record.ColSummary,
	record.ColClassifyError,
}

// ClassifyTable classifies the synopsis of every row. Rows without a synopsis
// get empty feature columns.
func (c *Classifier) ClassifyTable(ctx context.Context, t *csvutil.Table, limiter *ratelimit.Limiter) (stage.Stats, error) {
	stats := stage.Stats{Name: "classify", Total: t.Len()}
	for _, col := range OutputColumns {
		t.AddColumn(col)
	}

	for i := 0; i < t.Len(); i++ {
		synopsis := record.Synopsis(t, i)
		if synopsis == "" {
			slog.Debug("Skipping row without synopsis", "row", i+1, "title", t.Get(i, record.ColTitle))
			writeFeatures(t, i, Features{})
			stats.Skipped++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		f, err := c.Classify(ctx, synopsis)
		if err != nil {
			return stats, err
		}
		writeFeatures(t, i, f)
		stats.Processed++
		if f.Error != "" {
			stats.Failed++
		}

		stage.LogProgress("synopses", stats.Processed+stats.Skipped, stats.Total, 10)
	}
	return stats, nil
}

func writeFeatures(t *csvutil.Table, i int, f Features) {
	t.Set(i, record.ColGenre, f.Genre)
	t.Set(i, record.ColSeason, f.Season)
	t.Set(i, record.ColAge, f.ProtagonistAge)
	t.Set(i, record.ColSetting, f.Setting)
	t.Set(i, record.ColSummary, f.Summary)
	t.Set(i, record.ColClassifyError, f.Error)
	if f.Characters != "" {
		t.Set(i, record.ColCharacters, f.Characters)
	}
}
