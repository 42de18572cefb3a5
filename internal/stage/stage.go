// Package stage holds the bookkeeping shared by the pipeline stages.
package stage

import (
	"fmt"
	"log/slog"
)

// Stats summarises one stage run.
type Stats struct {
	Name      string
	Total     int
	Processed int
	Skipped   int
	Failed    int
}

// Resolved returns the rows that were processed without failure.
func (s Stats) Resolved() int {
	return s.Processed - s.Failed
}

// LogValue renders the stats as a slog group.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("processed", s.Processed),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
	)
}

// LogProgress logs progress every interval rows and on the last row.
func LogProgress(what string, done, total, interval int) {
	if done == 0 || interval <= 0 {
		return
	}
	if done%interval != 0 && done != total {
		return
	}

	percentage := "0%"
	if total > 0 {
		percentage = fmt.Sprintf("%.1f%%", float64(done)/float64(total)*100)
	}

	slog.Info("Processing "+what,
		"processed", done,
		"total", total,
		"percentage", percentage,
	)
}
