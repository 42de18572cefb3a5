package wiki

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule names understood by the matcher.
const (
	RuleAuthorInBody     = "author-in-body"
	RuleTitleInPageTitle = "title-in-page-title"
	RuleNotMedia         = "not-media-adaptation"
	RuleBookIndicator    = "book-indicator-in-lead"
)

// FactPattern extracts one labelled fact. The last capture group is the value.
type FactPattern struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// RuleSet is the configurable part of page matching and cleanup.
type RuleSet struct {
	SearchKeyword      string        `yaml:"search_keyword"`
	LeadLines          int           `yaml:"lead_lines"`
	Rules              []string      `yaml:"rules"`
	MediaTitlePattern  string        `yaml:"media_title_pattern"`
	BookKeywords       []string      `yaml:"book_keywords"`
	ExcludeLinePattern string        `yaml:"exclude_line_pattern"`
	Facts              []FactPattern `yaml:"facts"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() RuleSet {
	var rs RuleSet
	if err := yaml.Unmarshal(defaultRulesYAML, &rs); err != nil {
		panic(fmt.Sprintf("embedded rules.yaml is invalid: %v", err))
	}
	return rs
}

// LoadRules reads a rule set from path. Fields missing from the file keep
// their embedded defaults. An empty path returns the defaults.
func LoadRules(path string) (RuleSet, error) {
	rs := DefaultRules()
	if path == "" {
		return rs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rs, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return rs, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return rs, nil
}

// Candidate is one fetched page checked against a (title, author) pair.
type Candidate struct {
	Title  string
	Author string
	Page   Page
}

// Rule is one named predicate of the matcher.
type Rule struct {
	Name  string
	Check func(Candidate) bool
}

// Matcher accepts a candidate when every rule passes, checked in order.
type Matcher struct {
	rules   []Rule
	exclude *regexp.Regexp
	facts   []compiledFact
}

type compiledFact struct {
	label string
	re    *regexp.Regexp
}

// NewMatcher compiles rs. When requireAuthor is false the author-in-body rule is dropped.
func NewMatcher(rs RuleSet, requireAuthor bool) (*Matcher, error) {
	media, err := regexp.Compile(rs.MediaTitlePattern)
	if err != nil {
		return nil, fmt.Errorf("media_title_pattern: %w", err)
	}
	m := &Matcher{}
	if rs.ExcludeLinePattern != "" {
		if m.exclude, err = regexp.Compile(rs.ExcludeLinePattern); err != nil {
			return nil, fmt.Errorf("exclude_line_pattern: %w", err)
		}
	}
	for _, f := range rs.Facts {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("fact %s: %w", f.Label, err)
		}
		m.facts = append(m.facts, compiledFact{label: f.Label, re: re})
	}

	keywords := make([]string, 0, len(rs.BookKeywords))
	for _, k := range rs.BookKeywords {
		keywords = append(keywords, fold(k))
	}

	for _, name := range rs.Rules {
		switch name {
		case RuleAuthorInBody:
			if requireAuthor {
				m.rules = append(m.rules, Rule{Name: name, Check: authorInBody})
			}
		case RuleTitleInPageTitle:
			m.rules = append(m.rules, Rule{Name: name, Check: titleInPageTitle})
		case RuleNotMedia:
			m.rules = append(m.rules, Rule{Name: name, Check: notMedia(media)})
		case RuleBookIndicator:
			m.rules = append(m.rules, Rule{Name: name, Check: bookIndicatorInLead(keywords, rs.LeadLines)})
		default:
			return nil, fmt.Errorf("unknown matcher rule %q", name)
		}
	}
	return m, nil
}

// Rules returns the active rules in evaluation order.
func (m *Matcher) Rules() []Rule {
	return m.rules
}

// Evaluate returns whether c is accepted and, if not, the first failing rule.
func (m *Matcher) Evaluate(c Candidate) (bool, string) {
	for _, r := range m.rules {
		if !r.Check(c) {
			return false, r.Name
		}
	}
	return true, ""
}

func authorInBody(c Candidate) bool {
	return strings.Contains(fold(c.Page.Extract), fold(c.Author))
}

func titleInPageTitle(c Candidate) bool {
	return strings.Contains(fold(c.Page.Title), fold(c.Title))
}

func notMedia(media *regexp.Regexp) func(Candidate) bool {
	return func(c Candidate) bool {
		return !media.MatchString(norm.NFKC.String(c.Page.Title))
	}
}

func bookIndicatorInLead(keywords []string, leadLines int) func(Candidate) bool {
	if leadLines <= 0 {
		leadLines = 5
	}
	return func(c Candidate) bool {
		lines := strings.SplitN(c.Page.Extract, "\n", leadLines+1)
		if len(lines) > leadLines {
			lines = lines[:leadLines]
		}
		lead := fold(strings.Join(lines, "\n"))
		for _, k := range keywords {
			if strings.Contains(lead, k) {
				return true
			}
		}
		return false
	}
}

// fold makes comparisons case-insensitive and width-insensitive.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}
