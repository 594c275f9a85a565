package scraper

import (
	"regexp"
	"strings"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// sectionLabel is the meaning of one results-page section header
type sectionLabel struct {
	kind models.Kind
	skip bool
}

// linkPriority is the order in which row links are tried when the section
// label does not settle the kind.
var linkPriority = []models.Kind{models.KindSaga, models.KindSeries, models.KindIssue}

// SectionClassifier turns a search results page into typed candidate stubs
type SectionClassifier struct {
	baseURL    string
	regexes    map[string]*regexp.Regexp
	normalizer *TextNormalizer
	titles     *TitleDecomposer

	headerMatcher cascadia.Selector
	rowMatcher    cascadia.Selector
	linkMatcher   cascadia.Selector
	rowWalker     cascadia.Selector
	linkWalker    cascadia.Selector
}

func NewSectionClassifier(baseURL string) *SectionClassifier {
	return &SectionClassifier{
		baseURL:       baseURL,
		regexes:       config.CompileRegexes(),
		normalizer:    NewTextNormalizer(),
		titles:        NewTitleDecomposer(),
		headerMatcher: cascadia.MustCompile(SectionHeaderSelector),
		rowMatcher:    cascadia.MustCompile(ResultRowSelector),
		linkMatcher:   cascadia.MustCompile(EntityLinkSelector),
		rowWalker:     cascadia.MustCompile(SectionHeaderSelector + ", " + ResultRowSelector),
		linkWalker:    cascadia.MustCompile(SectionHeaderSelector + ", " + EntityLinkSelector),
	}
}

// Classify returns the candidates of every section in page order. Rows of an
// authors section are skipped; a page without headers is one flat list.
func (c *SectionClassifier) Classify(pageText string) []models.CandidateStub {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil
	}

	rowMatcher, walker := c.rowMatcher, c.rowWalker
	flat := false
	if doc.FindMatcher(c.rowMatcher).Length() == 0 {
		// no result row blocks at all: every entity link is its own row
		rowMatcher, walker = c.linkMatcher, c.linkWalker
		flat = true
	}

	hasHeaders := doc.FindMatcher(c.headerMatcher).Length() > 0

	current := sectionLabel{kind: models.KindIssue}
	inSection := !hasHeaders
	seen := make(map[string]bool)
	var stubs []models.CandidateStub

	// cascadia returns matches in document order, so headers and rows interleave as on the page
	doc.FindMatcher(walker).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if c.headerMatcher.Match(node) {
			current = classifyHeader(c.normalizer.Text(s))
			inSection = true
			return
		}
		if !inSection || current.skip {
			return
		}
		if !rowMatcher.Match(node) || s.ParentsMatcher(rowMatcher).Length() > 0 {
			return
		}

		stub, ok := c.parseRow(s, current)
		if !ok {
			return
		}
		if flat {
			id := string(stub.Kind) + "/" + stub.Key
			if seen[id] {
				return
			}
			seen[id] = true
		}
		stubs = append(stubs, stub)
	})

	return stubs
}

// classifyHeader maps a section header text to a kind by substring
func classifyHeader(text string) sectionLabel {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "colec"):
		return sectionLabel{kind: models.KindSeries}
	case strings.Contains(lower, "saga"):
		return sectionLabel{kind: models.KindSaga}
	case strings.Contains(lower, "número"), strings.Contains(lower, "numero"):
		return sectionLabel{kind: models.KindIssue}
	case strings.Contains(lower, "autor"):
		return sectionLabel{skip: true}
	}
	return sectionLabel{kind: models.KindIssue}
}

// parseRow builds a stub from one result row; rows without a usable link are dropped
func (c *SectionClassifier) parseRow(row *goquery.Selection, label sectionLabel) (models.CandidateStub, bool) {
	// the section's own kind first, then the fixed safety net
	order := append([]models.Kind{label.kind}, linkPriority...)

	links := row.Find("a[href]").AddSelection(row.Filter("a[href]"))

	var (
		kind  models.Kind
		key   string
		title string
	)
	for _, k := range order {
		re := c.linkRegex(k)
		links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			m := re.FindStringSubmatch(href)
			if m == nil {
				return true
			}
			text := c.normalizer.Text(a)
			if text == "" {
				return true
			}
			kind, key, title = k, m[1], text
			return false
		})
		if key != "" {
			break
		}
	}
	if key == "" {
		return models.CandidateStub{}, false
	}

	stub := models.CandidateStub{
		Kind:         kind,
		Key:          key,
		DisplayTitle: title,
	}
	stub.URL = models.ResolveRef(c.baseURL, stub.Ref())
	stub.ThumbnailURL, stub.FullImageURL = c.rowImages(row)

	switch kind {
	case models.KindIssue:
		stub.DerivedSeriesName, stub.DerivedIssueTitle = c.titles.Decompose(title, key)
	default:
		stub.DerivedSeriesName = title
	}

	return stub, true
}

func (c *SectionClassifier) linkRegex(kind models.Kind) *regexp.Regexp {
	switch kind {
	case models.KindSaga:
		return c.regexes["sagaLink"]
	case models.KindSeries:
		return c.regexes["collectionLink"]
	default:
		return c.regexes["issueLink"]
	}
}

// rowImages returns the absolute thumbnail URL and, when the thumbnail is
// wrapped in a link to an image file, the full-size image URL.
func (c *SectionClassifier) rowImages(row *goquery.Selection) (string, string) {
	img := row.Find(CoverImageSelector).First()
	if img.Length() == 0 {
		img = row.Find("img[src]").First()
	}
	src, ok := img.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", ""
	}
	thumb := models.AbsoluteURL(c.baseURL, src)

	full := ""
	if href, ok := img.Closest("a").Attr("href"); ok && isImagePath(href) {
		full = models.AbsoluteURL(c.baseURL, href)
	}
	return thumb, full
}

func isImagePath(href string) bool {
	lower := strings.ToLower(href)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
