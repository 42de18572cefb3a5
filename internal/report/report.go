// Package report renders stage CSV fill rates and stage summaries as tables.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
	"github.com/HazeMiya/ai-2024/internal/stage"
)

// ColumnFill is the number of non-blank cells in one column.
type ColumnFill struct {
	Name   string
	Filled int
	Total  int
}

// Percentage returns the share of filled cells.
func (c ColumnFill) Percentage() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Filled) / float64(c.Total) * 100
}

// Fill counts non-blank cells per column in header order.
func Fill(t *csvutil.Table) []ColumnFill {
	header := t.Header()
	fills := make([]ColumnFill, len(header))
	for c, name := range header {
		fills[c] = ColumnFill{Name: name, Total: t.Len()}
		for i := 0; i < t.Len(); i++ {
			if strings.TrimSpace(t.Get(i, name)) != "" {
				fills[c].Filled++
			}
		}
	}
	return fills
}

// RenderFill renders the fill table of t.
func RenderFill(t *csvutil.Table) string {
	fills := Fill(t)
	rows := make([][]string, 0, len(fills))
	for _, f := range fills {
		rows = append(rows, []string{
			f.Name,
			strconv.Itoa(f.Filled),
			strconv.Itoa(f.Total - f.Filled),
			fmt.Sprintf("%.1f%%", f.Percentage()),
		})
	}
	return renderTable(
		[]string{"Column", "Filled", "Empty", "Fill"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}

// RenderStages renders one line per stage summary.
func RenderStages(stats []stage.Stats) string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Resolved()),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
		})
	}
	return renderTable(
		[]string{"Stage", "Total", "Resolved", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

// RenderCounts renders a key/count table sorted by key.
func RenderCounts(title string, counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return renderTable([]string{title, "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
