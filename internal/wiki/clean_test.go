package wiki

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCleanLines(t *testing.T) {
	m, err := NewMatcher(DefaultRules(), true)
	assert.NoError(t, err)

	body := "『火花』は又吉直樹の小説。\n2016年に映画化された。\nあらすじ本文。\n関連項目\n単行本は文藝春秋刊。"
	assert.Equal(t, []string{"『火花』は又吉直樹の小説。", "あらすじ本文。"}, m.CleanLines(body))
}

func TestSummarize(t *testing.T) {
	lines := []string{"", "  ", "最初の行。", "二行目。"}
	assert.Equal(t, "最初の行。", Summarize(lines, SummaryFirstLine, 500))
	assert.Equal(t, "最初の行。\n二行目。", Summarize(lines, SummaryFull, 0))
	assert.Equal(t, "最初の", Summarize(lines, SummaryFirstLine, 3))
	assert.Equal(t, "", Summarize(nil, SummaryFirstLine, 10))
}

func TestTruncateRunesKeepsWholeCharacters(t *testing.T) {
	long := strings.Repeat("あ", 600)
	got := truncateRunes(long, 500)
	assert.Equal(t, 500, len([]rune(got)))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
}

func TestExtractFacts(t *testing.T) {
	m, err := NewMatcher(DefaultRules(), true)
	assert.NoError(t, err)

	body := "著者：又吉直樹\n出版社：文藝春秋\n発行日：2015年3月11日\nジャンル: 中編小説\nISBN 978-4-16-390230-2\n頁数：152"
	assert.Equal(t, map[string]string{
		"著者":   "又吉直樹",
		"出版社":  "文藝春秋",
		"発行年":  "2015年3月11日",
		"ジャンル": "中編小説",
		"ISBN": "978-4-16-390230-2",
		"ページ数": "152",
	}, m.ExtractFacts(body))

	assert.Equal(t, map[string]string{}, m.ExtractFacts("本文のみ"))
}

func TestParagraphsMentioning(t *testing.T) {
	body := "経歴\n2003年にデビュー。\n2015年に『火花』を発表。\n同作で芥川賞を受賞。\n\n私生活\n趣味は散歩。"
	assert.Equal(t, []string{"2003年にデビュー。", "2015年に『火花』を発表。", "同作で芥川賞を受賞。"}, paragraphsMentioning(body, "火花"))
	assert.Equal(t, 0, len(paragraphsMentioning(body, "劇場")))
}
