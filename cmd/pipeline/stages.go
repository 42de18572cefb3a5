// Package pipeline wires configuration and stage files to the pipeline stages.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/HazeMiya/ai-2024/internal/classify"
	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/HazeMiya/ai-2024/internal/export"
	"github.com/HazeMiya/ai-2024/internal/fileutil"
	"github.com/HazeMiya/ai-2024/internal/filter"
	"github.com/HazeMiya/ai-2024/internal/geocode"
	"github.com/HazeMiya/ai-2024/internal/isbn"
	"github.com/HazeMiya/ai-2024/internal/ratelimit"
	"github.com/HazeMiya/ai-2024/internal/stage"
	"github.com/HazeMiya/ai-2024/internal/wiki"
)

// Sleeper pauses the classifier between retries. Tests swap it out.
var Sleeper = time.Sleep

// Filter reduces the raw prize list to one row per winning work.
func Filter(_ context.Context, in, out string) (stage.Stats, error) {
	t, err := readStage(in)
	if err != nil {
		return stage.Stats{Name: "filter"}, err
	}

	filtered, fs := filter.Apply(t, filter.Options{Prizes: viper.GetStringSlice("filter.prizes")})
	stats := stage.Stats{
		Name:      "filter",
		Total:     fs.Input,
		Processed: fs.Works,
		Skipped:   fs.Input - fs.Kept,
	}
	slog.Info("Filtered prize list", "input", fs.Input, "excluded", fs.Excluded, "kept", fs.Kept, "works", fs.Works)

	return stats, writeStage(out, filtered)
}

// ISBN resolves an identifier for every row.
func ISBN(ctx context.Context, in, out string) (stage.Stats, error) {
	t, err := readStage(in)
	if err != nil {
		return stage.Stats{Name: "isbn"}, err
	}

	resolver := isbn.NewResolver(newISBNSources()...)
	limiter := ratelimit.New("isbn", viper.GetFloat64("isbn.rate_per_second"))
	stats, err := resolver.ResolveTable(ctx, t, limiter)
	if err != nil {
		return stats, err
	}
	logStats(stats)
	return stats, writeStage(out, t)
}

// Wiki attaches encyclopedia synopses and facts.
func Wiki(ctx context.Context, in, out string) (stage.Stats, error) {
	t, err := readStage(in)
	if err != nil {
		return stage.Stats{Name: "wiki"}, err
	}

	opts, err := wikiOptions()
	if err != nil {
		return stage.Stats{Name: "wiki"}, err
	}
	enricher, err := wiki.NewEnricher(newWikiAPI(), opts)
	if err != nil {
		return stage.Stats{Name: "wiki"}, err
	}

	stats, err := wiki.EnrichTable(ctx, t, enricher, viper.GetInt("wiki.workers"))
	if err != nil {
		return stats, err
	}
	slog.Info("Enrichment cache", "entries", enricher.Cache().Len())
	logStats(stats)
	return stats, writeStage(out, t)
}

// Classify extracts features from each synopsis.
func Classify(ctx context.Context, in, out string) (stage.Stats, error) {
	t, err := readStage(in)
	if err != nil {
		return stage.Stats{Name: "classify"}, err
	}

	oracle, err := newOracle()
	if err != nil {
		return stage.Stats{Name: "classify"}, err
	}
	delay := viper.GetDuration("llm.retry_delay")
	classifier := classify.New(oracle,
		classify.WithMaxRetries(viper.GetInt("llm.max_retries")),
		classify.WithRetryDelay(delay),
		classify.WithSleeper(Sleeper),
	)
	limiter := ratelimit.New("llm", viper.GetFloat64("llm.rate_per_second"))

	stats, err := classifier.ClassifyTable(ctx, t, limiter)
	if err != nil {
		return stats, err
	}
	logStats(stats)
	return stats, writeStage(out, t)
}

// Geocode attaches coordinates for each setting.
func Geocode(ctx context.Context, in, out string) (stage.Stats, error) {
	t, err := readStage(in)
	if err != nil {
		return stage.Stats{Name: "geocode"}, err
	}

	limiter := ratelimit.New("geocode", viper.GetFloat64("geocode.rate_per_second"))
	stats, err := geocode.GeocodeTable(ctx, t, newLocator(), limiter)
	if err != nil {
		return stats, err
	}
	logStats(stats)
	return stats, writeStage(out, t)
}

// Export writes the JSON array and, when enabled, the books table.
func Export(ctx context.Context, in, out string) (stage.Stats, error) {
	stats := stage.Stats{Name: "export"}
	t, err := readStage(in)
	if err != nil {
		return stats, err
	}

	mode, err := export.ParseSentinelMode(viper.GetString("export.sentinel_mode"))
	if err != nil {
		return stats, err
	}
	books, es := export.Build(t, export.Options{
		Mode:         mode,
		Placeholders: viper.GetBool("export.treat_placeholders"),
	})
	stats.Total = es.Books
	stats.Processed = es.Books
	slog.Info("Built export", "books", es.Books, "sentinels", es.Sentinels)

	if _, err := fileutil.WriteJSONFile(books, out, config.OverwriteFiles); err != nil {
		return stats, err
	}

	if viper.GetBool("datasette.enabled") {
		store, err := newStore()
		if err != nil {
			return stats, err
		}
		if err := export.WriteStore(ctx, store, books); err != nil {
			return stats, fmt.Errorf("writing books table: %w", err)
		}
	}
	return stats, nil
}

// Step is one stage with its input and output file.
type Step struct {
	Name string
	Run  func(ctx context.Context, in, out string) (stage.Stats, error)
	In   string
	Out  string
}

// Steps lists the stages in pipeline order.
func Steps(f Files) []Step {
	return []Step{
		{Name: "filter", Run: Filter, In: f.Raw, Out: f.Filtered},
		{Name: "isbn", Run: ISBN, In: f.Filtered, Out: f.ISBN},
		{Name: "wiki", Run: Wiki, In: f.ISBN, Out: f.Wiki},
		{Name: "classify", Run: Classify, In: f.Wiki, Out: f.Classified},
		{Name: "geocode", Run: Geocode, In: f.Classified, Out: f.Geocoded},
		{Name: "export", Run: Export, In: f.Geocoded, Out: f.JSON},
	}
}

// Run executes the stages from the named one onward. An empty from starts at filter.
// It stops at the first failing stage and returns the stats gathered so far.
func Run(ctx context.Context, f Files, from string) ([]stage.Stats, error) {
	steps := Steps(f)
	start := 0
	if from != "" {
		start = -1
		for i, s := range steps {
			if s.Name == from {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("unknown stage %q", from)
		}
	}

	var all []stage.Stats
	for _, s := range steps[start:] {
		slog.Info("Starting stage", "stage", s.Name, "input", s.In, "output", s.Out)
		stats, err := s.Run(ctx, s.In, s.Out)
		stats.Name = s.Name
		all = append(all, stats)
		if err != nil {
			return all, fmt.Errorf("stage %s: %w", s.Name, err)
		}
	}
	return all, nil
}

func logStats(s stage.Stats) {
	slog.Info("Stage complete", "stage", s.Name, "stats", s)
}
