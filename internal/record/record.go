// Package record maps stage CSV rows onto the typed view of one literary work.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/csvutil"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Record is one literary work as it flows through the pipeline.
// Empty strings mean "not resolved yet".
type Record struct {
	Title          string
	Author         string
	Prizes         []string
	ISBN           string
	ImageURL       string
	Synopsis       string
	WikipediaURL   string
	Facts          map[string]string
	Genre          string
	Season         string
	ProtagonistAge string
	Setting        string
	Summary        string
	Characters     string
	ClassifyError  string
	Coordinates    *Coordinates
}

// FromRow builds the typed view of row i.
func FromRow(t *csvutil.Table, i int) Record {
	r := Record{
		Title:          strings.TrimSpace(t.Get(i, ColTitle)),
		Author:         strings.TrimSpace(t.Get(i, ColAuthor)),
		Prizes:         SplitPrizes(t.Get(i, ColPrizes)),
		ISBN:           strings.TrimSpace(t.Get(i, ColISBN)),
		ImageURL:       t.Get(i, ColImageURL),
		Synopsis:       Synopsis(t, i),
		WikipediaURL:   t.Get(i, ColWikipediaURL),
		Genre:          t.Get(i, ColGenre),
		Season:         t.Get(i, ColSeason),
		ProtagonistAge: t.Get(i, ColAge),
		Setting:        t.Get(i, ColSetting),
		Summary:        t.Get(i, ColSummary),
		Characters:     t.Get(i, ColCharacters),
		ClassifyError:  t.Get(i, ColClassifyError),
	}

	if raw := t.Get(i, ColFacts); raw != "" {
		facts := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &facts); err == nil {
			r.Facts = facts
		}
	}

	lat, latOK := parseDegrees(t.Get(i, ColLatitude))
	lon, lonOK := parseDegrees(t.Get(i, ColLongitude))
	if latOK && lonOK {
		r.Coordinates = &Coordinates{Lat: lat, Lon: lon}
	}

	return r
}

// parseDegrees reads a coordinate cell. "nan" and infinities count as missing.
func parseDegrees(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Synopsis returns the synopsis of row i. It prefers the 概要 column and falls
// back to the 概要 key of a legacy JSON Wikipedia情報 column.
func Synopsis(t *csvutil.Table, i int) string {
	if s := strings.TrimSpace(t.Get(i, ColSynopsis)); s != "" {
		return s
	}
	raw := strings.TrimSpace(t.Get(i, ColLegacyWiki))
	if raw == "" || raw == "{}" {
		return ""
	}
	var legacy map[string]any
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return ""
	}
	s, _ := legacy[ColSynopsis].(string)
	return strings.TrimSpace(s)
}

// SplitPrizes splits a pipe-joined prize cell.
func SplitPrizes(cell string) []string {
	var prizes []string
	for _, p := range strings.Split(cell, "|") {
		if p = strings.TrimSpace(p); p != "" {
			prizes = append(prizes, p)
		}
	}
	return prizes
}

// SetCoordinates writes coordinates into row i; nil clears them.
func SetCoordinates(t *csvutil.Table, i int, c *Coordinates) {
	if c == nil {
		t.Set(i, ColLatitude, "")
		t.Set(i, ColLongitude, "")
		return
	}
	t.Set(i, ColLatitude, strconv.FormatFloat(c.Lat, 'f', -1, 64))
	t.Set(i, ColLongitude, strconv.FormatFloat(c.Lon, 'f', -1, 64))
}

// SetFacts writes facts into row i as a JSON object.
func SetFacts(t *csvutil.Table, i int, facts map[string]string) error {
	if len(facts) == 0 {
		t.Set(i, ColFacts, "")
		return nil
	}
	data, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}
	t.Set(i, ColFacts, string(data))
	return nil
}
