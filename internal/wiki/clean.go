package wiki

import (
	"strings"
)

// Summary modes.
const (
	SummaryFirstLine = "first_line"
	SummaryFull      = "full"
)

// CleanLines splits body into lines and drops those matching the exclusion pattern.
func (m *Matcher) CleanLines(body string) []string {
	lines := strings.Split(body, "\n")
	if m.exclude == nil {
		return lines
	}
	kept := lines[:0:0]
	for _, line := range lines {
		if !m.exclude.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return kept
}

// Summarize builds the synopsis from cleaned lines. first_line keeps the first
// non-blank line, full keeps every line. The result is cut at maxRunes when positive.
func Summarize(lines []string, mode string, maxRunes int) string {
	var text string
	if mode == SummaryFull {
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	} else {
		for _, line := range lines {
			if strings.TrimSpace(line) != "" {
				text = line
				break
			}
		}
	}
	return truncateRunes(text, maxRunes)
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// ExtractFacts applies the labelled fact patterns to body. The first match of
// each pattern wins.
func (m *Matcher) ExtractFacts(body string) map[string]string {
	facts := map[string]string{}
	for _, f := range m.facts {
		match := f.re.FindStringSubmatch(body)
		if len(match) < 2 {
			continue
		}
		if v := strings.TrimSpace(match[len(match)-1]); v != "" {
			facts[f.label] = v
		}
	}
	return facts
}

// paragraphsMentioning returns the paragraphs of body that mention title,
// each with its neighbours on either side. Overlapping windows are merged.
func paragraphsMentioning(body, title string) []string {
	paragraphs := strings.Split(body, "\n")
	include := make([]bool, len(paragraphs))
	needle := fold(title)
	found := false
	for i, p := range paragraphs {
		if needle != "" && strings.Contains(fold(p), needle) {
			found = true
			for j := max(0, i-1); j <= min(len(paragraphs)-1, i+1); j++ {
				include[j] = true
			}
		}
	}
	if !found {
		return nil
	}
	var out []string
	for i, p := range paragraphs {
		if include[i] && strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
