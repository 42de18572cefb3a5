// Package filter narrows the raw prize list down to one row per winning work.
package filter

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/record"
)

// Raw input columns that only exist before filtering.
const (
	colWork      = "受賞・最終候補作"
	colPrizeType = "賞タイプ"
)

// DroppedColumns are removed before grouping.
var DroppedColumns = []string{"年", "賞", "出版", "key", "追加日時", "発表日", "複数受賞", "並べ順日付", colPrizeType}

// OutputColumns is the column order of the filtered file.
var OutputColumns = []string{
	record.ColTitle,
	record.ColAuthor,
	record.ColPrizes,
	record.ColAuthorWork,
	record.ColISBN,
	record.ColCalil,
	record.ColImageURL,
}

// Options controls which prizes survive the filter.
type Options struct {
	Prizes []string
}

// Stats summarises one filter run.
type Stats struct {
	Input    int
	Excluded int
	Kept     int
	Works    int
}

// Apply filters t and returns a new table with one row per title.
// t itself is modified (rows and columns dropped).
func Apply(t *csvutil.Table, opts Options) (*csvutil.Table, Stats) {
	stats := Stats{Input: t.Len()}

	allowed := make([]string, 0, len(opts.Prizes))
	for _, p := range opts.Prizes {
		if p = normalize(p); p != "" {
			allowed = append(allowed, p)
		}
	}

	t.Filter(func(i int) bool {
		if excluded(t, i) {
			stats.Excluded++
			return false
		}
		return prizeAllowed(t.Get(i, record.ColPrizes), allowed)
	})
	stats.Kept = t.Len()

	t.DropColumns(DroppedColumns...)
	t.RenameColumn(colWork, record.ColTitle)

	out := group(t)
	stats.Works = out.Len()

	slog.Debug("Filtered prize list",
		"input", stats.Input,
		"excluded", stats.Excluded,
		"kept", stats.Kept,
		"works", stats.Works)

	return out, stats
}

func excluded(t *csvutil.Table, i int) bool {
	return strings.Contains(t.Get(i, record.ColPrizes), "高校生") ||
		strings.Contains(t.Get(i, colWork), "該当") ||
		strings.Contains(t.Get(i, colPrizeType), "候補")
}

func prizeAllowed(prize string, allowed []string) bool {
	prize = normalize(prize)
	if prize == "" {
		return false
	}
	for _, a := range allowed {
		if strings.Contains(prize, a) {
			return true
		}
	}
	return false
}

// normalize folds full-width ASCII so "このミステリーがすごい!" matches its full-width form.
func normalize(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// group merges rows sharing a title. Rows without a title are dropped. Prize
// names are sorted and de-duplicated; every other column takes the first
// non-empty value in the group.
func group(t *csvutil.Table) *csvutil.Table {
	header := t.Header()
	order := []string{}
	merged := map[string][]string{}
	prizes := map[string][]string{}

	for i := 0; i < t.Len(); i++ {
		title := t.Get(i, record.ColTitle)
		if title == "" {
			continue
		}
		row, seen := merged[title]
		if !seen {
			row = make([]string, len(header))
			merged[title] = row
			order = append(order, title)
		}
		for c, v := range t.Row(i) {
			if c < len(row) && row[c] == "" {
				row[c] = v
			}
		}
		if p := t.Get(i, record.ColPrizes); p != "" && !slices.Contains(prizes[title], p) {
			prizes[title] = append(prizes[title], p)
		}
	}
	slices.Sort(order)

	out := csvutil.NewTable(header)
	for _, title := range order {
		out.AppendRow(merged[title])
		names := prizes[title]
		slices.Sort(names)
		out.Set(out.Len()-1, record.ColPrizes, strings.Join(names, record.PrizeSeparator))
	}
	out.Select(OutputColumns...)
	return out
}
