package export

import (
	"log/slog"

	"github.com/HazeMiya/ai-2024/internal/classify"
	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/record"
)

// Allowed categorical values. Season excludes the 不明 answer the oracle may give.
var (
	Seasons = NewSet("春", "夏", "秋", "冬")
	Genres  = NewSet(classify.Genres...)
)

// Options controls the projection.
type Options struct {
	Mode SentinelMode
	// Placeholders exports 不明/架空 answers as the sentinel.
	Placeholders bool
}

// Stats counts sentinel substitutions per exported key.
type Stats struct {
	Books     int
	Sentinels map[string]int
}

// Build maps every row of t onto a Book. Rows are never dropped.
func Build(t *csvutil.Table, opts Options) ([]Book, Stats) {
	stats := Stats{Books: t.Len(), Sentinels: map[string]int{}}
	books := make([]Book, 0, t.Len())

	for i := 0; i < t.Len(); i++ {
		r := record.FromRow(t, i)
		field := func(key, raw string, allowed Set, placeholders bool) Text {
			if v, ok := Validate(raw, allowed, placeholders); ok {
				return String(v)
			}
			stats.Sentinels[key]++
			return Sentinel(opts.Mode)
		}

		b := Book{
			ID:            field("id", r.ISBN, nil, false),
			Title:         field("title", r.Title, nil, false),
			Author:        field("author", r.Author, nil, false),
			Award:         field("award", t.Get(i, record.ColPrizes), nil, false),
			Location:      field("location", r.Setting, nil, opts.Placeholders),
			Season:        field("season", r.Season, Seasons, opts.Placeholders),
			Genre:         field("genre", r.Genre, Genres, opts.Placeholders),
			Image:         field("image", r.ImageURL, nil, false),
			Summary:       field("summary", r.Summary, nil, false),
			CharactersAge: field("characters_age", r.ProtagonistAge, nil, false),
			Characters:    field("characters", r.Characters, nil, false),
		}
		if r.Coordinates != nil {
			lat, lon := r.Coordinates.Lat, r.Coordinates.Lon
			b.Latitude, b.Longitude = &lat, &lon
		} else {
			stats.Sentinels["latitude"]++
			stats.Sentinels["longitude"]++
		}
		books = append(books, b)
	}

	slog.Debug("Built export records", "books", stats.Books, "sentinels", stats.Sentinels)
	return books, stats
}
