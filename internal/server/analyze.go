package server

import (
	"regexp"
)

const (
	textRunes    = 3000
	summaryRunes = 200
	maxMentions  = 5
)

var (
	locationPattern  = regexp.MustCompile(`[^\s　]+(?:市|県|区|町|村)`)
	characterPattern = regexp.MustCompile(`[^\s　]+(?:さん|君|様|先生)`)
)

// Analyze extracts a short summary and place and person mentions from the
// first part of an article.
func Analyze(title, content string) Analysis {
	text := prefix(content, textRunes)
	return Analysis{
		Title:      title,
		Summary:    prefix(text, summaryRunes) + "...",
		Locations:  distinct(locationPattern.FindAllString(text, -1), maxMentions),
		Characters: distinct(characterPattern.FindAllString(text, -1), maxMentions),
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// distinct keeps the first max unique values in order of appearance.
func distinct(values []string, max int) []string {
	out := []string{}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
