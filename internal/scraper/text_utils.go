// Package scraper provides text processing utilities for content extraction.
package scraper

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	lineBreakTag  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockTag      = regexp.MustCompile(`(?i)</?(?:p|div|h[1-6]|li|blockquote|tr)(?:\s[^>]*)?>`)
	intraLineWS   = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// TextNormalizer decodes entities, strips markup and normalizes whitespace.
// All fields use Clean; the summary uses CleanPreserveParagraphs.
type TextNormalizer struct {
	sanitizer *bluemonday.Policy
}

func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Clean returns s as a single trimmed line of plain text
func (n *TextNormalizer) Clean(s string) string {
	if s == "" {
		return ""
	}
	text := n.stripMarkup(s)
	return strings.Join(strings.Fields(text), SingleSpace)
}

// CleanPreserveParagraphs keeps paragraph breaks, collapsing runs of blank
// lines to one and whitespace inside a line to a single space.
func (n *TextNormalizer) CleanPreserveParagraphs(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreakTag.ReplaceAllString(s, SingleNewline)
	s = blockTag.ReplaceAllString(s, DoubleNewline)
	text := n.stripMarkup(s)
	text = strings.ReplaceAll(text, "\r\n", SingleNewline)
	text = strings.ReplaceAll(text, "\r", SingleNewline)

	lines := strings.Split(text, SingleNewline)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(intraLineWS.ReplaceAllString(line, SingleSpace))
	}
	text = strings.Join(lines, SingleNewline)
	text = blankLineRuns.ReplaceAllString(text, DoubleNewline)
	return strings.TrimSpace(text)
}

// stripMarkup removes every tag, then decodes entities. bluemonday escapes
// the text it keeps, so the unescape must come after sanitizing.
func (n *TextNormalizer) stripMarkup(s string) string {
	sanitized := n.sanitizer.Sanitize(s)
	decoded := html.UnescapeString(sanitized)
	return strings.ReplaceAll(decoded, "\u00a0", SingleSpace)
}

// Text returns the flattened text of a selection
func (n *TextNormalizer) Text(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	// sanitize the markup while entities are still escaped; decoded text
	// holding "<...>" would lose it to the sanitizer
	var b strings.Builder
	s.Each(func(_ int, el *goquery.Selection) {
		if markup, err := goquery.OuterHtml(el); err == nil {
			b.WriteString(markup)
		}
	})
	return n.Clean(b.String())
}

// Flatten collapses whitespace in text the parser already decoded, such
// as attribute values.
func Flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", SingleSpace)), SingleSpace)
}

// ParagraphText returns the text of a selection keeping <br> and block breaks
func (n *TextNormalizer) ParagraphText(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	var parts []string
	s.Each(func(_ int, el *goquery.Selection) {
		inner, err := el.Html()
		if err != nil {
			return
		}
		if text := n.CleanPreserveParagraphs(inner); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, DoubleNewline)
}

// ContainsAny checks if a string contains any of the substrings (case-insensitive)
func ContainsAny(s string, substrings []string) bool {
	return CountAny(s, substrings) > 0
}

// CountAny returns how many of the substrings occur in s (case-insensitive)
func CountAny(s string, substrings []string) int {
	sLower := strings.ToLower(s)
	count := 0
	for _, substr := range substrings {
		if strings.Contains(sLower, strings.ToLower(substr)) {
			count++
		}
	}
	return count
}

// appendUnique appends value unless it is empty or already present
func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
