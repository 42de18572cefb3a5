package classify

import (
	"regexp"
	"strings"

	"github.com/HazeMiya/ai-2024/internal/record"
)

// Features is the structured answer for one synopsis.
type Features struct {
	Genre          string
	Season         string
	ProtagonistAge string
	Setting        string
	Summary        string
	Characters     string
	// Error is set instead of the fields above when every attempt failed.
	Error string
}

// Empty reports whether no field was extracted.
func (f Features) Empty() bool {
	return f == Features{}
}

var listMarker = regexp.MustCompile(`^\s*(?:[-・*•]+|\d+[.．)])\s*`)

// ParseResponse reads "label：value" lines. The ASCII colon is accepted too.
// Lines without a separator are ignored and the first separator splits.
func ParseResponse(text string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		fields[label] = value
	}
	return fields
}

func splitLabel(line string) (string, string, bool) {
	i := strings.Index(line, "：")
	width := len("：")
	if j := strings.Index(line, ":"); j >= 0 && (i < 0 || j < i) {
		i, width = j, 1
	}
	if i < 0 {
		return "", "", false
	}
	label := strings.TrimSpace(strings.Trim(trimListMarker(line[:i]), "*"))
	if label == "" {
		return "", "", false
	}
	return label, unwrap(line[i+width:]), true
}

// unwrap strips markdown emphasis and one pair of enclosing brackets.
func unwrap(v string) string {
	v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), "*"))
	for _, pair := range [][2]string{{"「", "」"}, {"[", "]"}} {
		if !strings.HasPrefix(v, pair[0]) || !strings.HasSuffix(v, pair[1]) || len(v) < len(pair[0])+len(pair[1]) {
			continue
		}
		inner := v[len(pair[0]) : len(v)-len(pair[1])]
		if !strings.Contains(inner, pair[0]) && !strings.Contains(inner, pair[1]) {
			return strings.TrimSpace(inner)
		}
	}
	return v
}

func trimListMarker(s string) string {
	return listMarker.ReplaceAllString(s, "")
}

// featuresFrom maps parsed labels onto Features.
func featuresFrom(fields map[string]string) Features {
	return Features{
		Genre:          fields[record.ColGenre],
		Season:         fields[record.ColSeason],
		ProtagonistAge: fields[record.ColAge],
		Setting:        fields[record.ColSetting],
		Summary:        fields[record.ColSummary],
		Characters:     fields[record.ColCharacters],
	}
}
