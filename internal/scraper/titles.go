package scraper

import (
	"regexp"
	"strings"

	"tebeosfera-scraper/internal/config"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownSeries is the last-resort series name when neither title nor slug carry one
const UnknownSeries = "Desconocido"

// titlePattern is one known result-title convention.
// seriesGroup and issueGroup index the submatches, issueGroup 0 means no issue title.
type titlePattern struct {
	name        string
	seriesGroup int
	issueGroup  int
}

var titlePatterns = []titlePattern{
	{name: "titleParenNumberColon", seriesGroup: 1, issueGroup: 4},
	{name: "titleDashNumberColon", seriesGroup: 1, issueGroup: 4},
	{name: "titleParenNumber", seriesGroup: 1},
	{name: "titleParenColon", seriesGroup: 1, issueGroup: 3},
	{name: "titleDashNumber", seriesGroup: 1},
}

// TitleDecomposer splits a combined result title into series name and issue title
type TitleDecomposer struct {
	regexes map[string]*regexp.Regexp
}

func NewTitleDecomposer() *TitleDecomposer {
	return &TitleDecomposer{
		regexes: config.CompileRegexes(),
	}
}

// Decompose returns the series name, never empty, and the issue title when
// the title convention carries one.
func (d *TitleDecomposer) Decompose(fullTitle, fallbackSlug string) (string, string) {
	title := strings.Join(strings.Fields(fullTitle), SingleSpace)

	if title != "" {
		for _, p := range titlePatterns {
			m := d.regexes[p.name].FindStringSubmatch(title)
			if m == nil {
				continue
			}
			series := strings.TrimSpace(m[p.seriesGroup])
			if series == "" {
				continue
			}
			issue := ""
			if p.issueGroup > 0 {
				issue = strings.TrimSpace(m[p.issueGroup])
			}
			return series, issue
		}

		if cut := strings.IndexAny(title, "(-"); cut > 0 {
			if series := strings.TrimSpace(title[:cut]); series != "" {
				return series, ""
			}
		}
	}

	if series := d.SeriesFromSlug(fallbackSlug); series != "" {
		return series, ""
	}
	if title != "" {
		return title, ""
	}
	return UnknownSeries, ""
}

// SeriesFromSlug title-cases the first one or two underscore tokens of slug
func (d *TitleDecomposer) SeriesFromSlug(slug string) string {
	var tokens []string
	for _, t := range strings.Split(slug, "_") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
		if len(tokens) == 2 {
			break
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.Spanish).String(strings.Join(tokens, SingleSpace))
}

// SeriesGroupKey is the name issues are grouped under: the series name cut
// at the first parenthesis, then at the first dash.
func SeriesGroupKey(name string) string {
	key := name
	if i := strings.Index(key, "("); i >= 0 {
		key = key[:i]
	}
	if i := strings.Index(key, "-"); i >= 0 {
		key = key[:i]
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return strings.TrimSpace(name)
	}
	return key
}

// SearchTermFromSlug turns a series slug into free-text search words,
// dropping the numeric tokens (year, volume) that the site appends.
func SearchTermFromSlug(slug string) string {
	var words []string
	for _, t := range strings.Split(slug, "_") {
		if t == "" || strings.Trim(t, "0123456789") == "" {
			break
		}
		words = append(words, t)
	}
	if len(words) == 0 {
		return strings.ReplaceAll(slug, "_", SingleSpace)
	}
	return strings.Join(words, SingleSpace)
}
