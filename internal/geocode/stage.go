package geocode

import (
	"context"
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
	"github.com/HazeMiya/ai-2024/internal/record"
	"github.com/HazeMiya/ai-2024/internal/stage"
)

// GeocodeTable writes latitude and longitude for every row with a usable 場所.
// Unresolved rows get empty coordinates.
func GeocodeTable(ctx context.Context, t *csvutil.Table, loc Locator, limiter *ratelimit.Limiter) (stage.Stats, error) {
	stats := stage.Stats{Name: "geocode", Total: t.Len()}
	t.AddColumn(record.ColLatitude)
	t.AddColumn(record.ColLongitude)

	for i := 0; i < t.Len(); i++ {
		place := t.Get(i, record.ColSetting)
		switch {
		case Skippable(place):
			slog.Debug("Skipping row without location", "title", t.Get(i, record.ColTitle))
			record.SetCoordinates(t, i, nil)
			stats.Skipped++
		default:
			if err := limiter.Wait(ctx); err != nil {
				return stats, err
			}
			stats.Processed++
			c, ok := loc.Geocode(ctx, place)
			if !ok {
				stats.Failed++
				slog.Debug("Location not resolved", "place", place)
				record.SetCoordinates(t, i, nil)
				break
			}
			record.SetCoordinates(t, i, &c)
		}

		stage.LogProgress("locations", stats.Processed+stats.Skipped, stats.Total, 10)
	}
	return stats, nil
}
