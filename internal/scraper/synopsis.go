package scraper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// markerFormat restricts where a marker may appear
type markerFormat int

const (
	formatAny markerFormat = iota
	formatEmphasis
	formatHeading
	formatPlain
)

const maxSynopsisParagraphs = 10

var (
	commentMarker     = regexp.MustCompile(`(?i)comentario\s+de\s+la\s+editorial\s*:?`)
	informationMarker = regexp.MustCompile(`(?i)informaci[óo]n\s+de\s+la\s+editorial\s*:?`)
	promotionMarkers  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)promoci[óo]n\s+editorial\s*:?`),
		regexp.MustCompile(`(?i)texto\s+promocional\s*:?`),
	}
	plotMarker        = regexp.MustCompile(`(?i)\bargumento\s*:`)
	plotHeadingMarker = regexp.MustCompile(`(?i)^\s*argumento\b\s*:?`)

	allMarkers = []*regexp.Regexp{
		commentMarker, informationMarker, promotionMarkers[0], promotionMarkers[1], plotMarker,
	}
)

// SynopsisResolver recovers the narrative summary of an issue page
type SynopsisResolver struct {
	normalizer *TextNormalizer
	crossRef   cascadia.Selector
}

func NewSynopsisResolver() *SynopsisResolver {
	return &SynopsisResolver{
		normalizer: NewTextNormalizer(),
		crossRef:   cascadia.MustCompile(CrossRefSelector),
	}
}

// Resolve parses pageText and returns its summary, or "" when nothing qualifies
func (r *SynopsisResolver) Resolve(pageText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return ""
	}
	return r.ResolveDocument(doc)
}

// ResolveDocument runs the strategies, most specific marker first
func (r *SynopsisResolver) ResolveDocument(doc *goquery.Document) string {
	blocks := newOutline(doc, r.normalizer, r.crossRef)

	strategies := []func() string{
		func() string { return r.fromMarker(blocks, commentMarker, formatAny, true) },
		func() string {
			for _, format := range []markerFormat{formatEmphasis, formatHeading, formatPlain} {
				if text := r.fromMarker(blocks, informationMarker, format, false); text != "" {
					return text
				}
			}
			return ""
		},
		func() string { return combinedParagraph(blocks) },
		func() string {
			for _, marker := range promotionMarkers {
				if text := r.fromMarker(blocks, marker, formatAny, false); text != "" {
					return text
				}
			}
			return ""
		},
		func() string {
			if text := r.fromMarker(blocks, plotMarker, formatAny, false); text != "" {
				return text
			}
			return r.fromMarker(blocks, plotHeadingMarker, formatHeading, false)
		},
		func() string { return r.bodyText(doc) },
		func() string { return BestParagraph(explicitParagraphs(blocks), MinParagraphSynopsis) },
	}

	for _, strategy := range strategies {
		if text := strategy(); text != "" {
			return text
		}
	}
	return ""
}

// fromMarker returns the content that follows the first qualifying marker,
// up to a heading, a cross-reference block, another marker or the end.
func (r *SynopsisResolver) fromMarker(blocks []textBlock, marker *regexp.Regexp, format markerFormat, withProductionPrefix bool) string {
	for i, b := range blocks {
		if !matchesFormat(b, marker, format) {
			continue
		}

		var parts []string
		if loc := marker.FindStringIndex(b.text); loc != nil {
			if rest := strings.TrimLeft(b.text[loc[1]:], " \t\n:.-–"); rest != "" {
				parts = append(parts, rest)
			}
		}
		for j := i + 1; j < len(blocks) && len(parts) < maxSynopsisParagraphs; j++ {
			next := blocks[j]
			if next.kind != blockParagraph || startsSection(next.text) {
				break
			}
			parts = append(parts, next.text)
		}
		if len(parts) == 0 {
			continue
		}
		if withProductionPrefix {
			parts = append(productionPrefix(blocks[:i]), parts...)
		}

		text := strings.Join(parts, DoubleNewline)
		if utf8.RuneCountInString(text) > MinMarkerSynopsisLen {
			return text
		}
	}
	return ""
}

func matchesFormat(b textBlock, marker *regexp.Regexp, format markerFormat) bool {
	switch format {
	case formatEmphasis:
		if b.kind != blockParagraph {
			return false
		}
		for _, t := range b.emphasisText() {
			if marker.MatchString(t) {
				return true
			}
		}
		return false
	case formatHeading:
		return b.kind == blockHeading && marker.MatchString(b.text)
	case formatPlain:
		return b.kind == blockParagraph && marker.MatchString(b.text)
	}
	return b.kind != blockBoundary && marker.MatchString(b.text)
}

func startsSection(text string) bool {
	for _, m := range allMarkers {
		if loc := m.FindStringIndex(text); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

// productionPrefix collects the short production-detail paragraphs right
// before a marker, stopping at the first one that does not qualify.
func productionPrefix(before []textBlock) []string {
	var prefix []string
	for k := len(before) - 1; k >= 0; k-- {
		b := before[k]
		if b.kind != blockParagraph || utf8.RuneCountInString(b.text) > MaxProductionPrefixLen {
			break
		}
		if !ContainsAny(b.text, ProductionKeywords) || ContainsAny(b.text, ColophonKeywords) {
			break
		}
		prefix = append([]string{b.text}, prefix...)
	}
	return prefix
}

// combinedParagraph finds a long paragraph that opens with production
// details and also carries narrative text.
func combinedParagraph(blocks []textBlock) string {
	for _, text := range explicitParagraphs(blocks) {
		if utf8.RuneCountInString(text) <= MinCombinedParagraph {
			continue
		}
		head := string([]rune(text)[:ProductionWindow])
		if !ContainsAny(head, ProductionKeywords) {
			continue
		}
		if hasQuotes(text) || ContainsAny(text, NarrativeKeywords) {
			return text
		}
	}
	return ""
}

// bodyText joins every paragraph of the container holding the body-text class
func (r *SynopsisResolver) bodyText(doc *goquery.Document) string {
	first := doc.Find(BodyTextSelector).First()
	if first.Length() == 0 {
		return ""
	}
	var parts []string
	first.Parent().Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := r.normalizer.ParagraphText(p); text != "" {
			parts = append(parts, text)
		}
	})
	text := strings.Join(parts, DoubleNewline)
	if utf8.RuneCountInString(text) > MinMarkerSynopsisLen {
		return text
	}
	return ""
}

func explicitParagraphs(blocks []textBlock) []string {
	var out []string
	for _, b := range blocks {
		if b.kind == blockParagraph && b.tag == "p" {
			out = append(out, b.text)
		}
	}
	return out
}
