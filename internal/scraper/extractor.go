package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// IssueExtractor turns one issue detail page into an IssueRecord
type IssueExtractor struct {
	baseURL     string
	regexes     map[string]*regexp.Regexp
	normalizer  *TextNormalizer
	synopsis    *SynopsisResolver
	images      *ImageExtractor
	rowHandlers []labeledRow
}

func NewIssueExtractor(baseURL string) *IssueExtractor {
	e := &IssueExtractor{
		baseURL:    baseURL,
		regexes:    config.CompileRegexes(),
		normalizer: NewTextNormalizer(),
		synopsis:   NewSynopsisResolver(),
		images:     NewImageExtractor(baseURL),
	}
	e.rowHandlers = e.labeledRows()
	return e
}

// Extract parses pageText into a best-effort record. The boolean is false
// only when the page has no title block, i.e. it is not an issue page.
func (e *IssueExtractor) Extract(pageText, pageURL string) (*models.IssueRecord, bool) {
	if strings.TrimSpace(pageText) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		return nil, false
	}

	rec := &models.IssueRecord{WebURL: pageURL}
	if !e.extractTitle(doc, rec) {
		return nil, false
	}

	e.extractIssueNumber(doc, rec)
	e.extractPublisher(doc, rec)
	e.extractLabeledRows(doc, rec)
	e.extractAuthors(doc, rec)
	rec.Genres = e.collectTexts(doc.Find(GenreSelector))
	rec.Characters = e.collectTexts(doc.Find(CharacterSelector))
	rec.StoryArcs = e.collectTexts(doc.Find(StoryArcSelector))

	if rec.Summary == "" {
		rec.Summary = e.synopsis.ResolveDocument(doc)
	}

	rec.ImageURLs = e.images.ExtractIssueImages(doc)

	if rec.ReleaseDate != "" {
		if d, ok := ParseDate(rec.ReleaseDate); ok {
			rec.Day, rec.Month, rec.Year = intPtr(d.Day), intPtr(d.Month), intPtr(d.Year)
		}
	}

	if rec.VolumeYear == nil {
		if m := e.regexes["volumeYear"].FindStringSubmatch(rec.SeriesName); m != nil {
			if year, err := strconv.Atoi(m[1]); err == nil {
				rec.VolumeYear = &year
			}
		}
	}

	e.fillFromURL(rec, pageURL)
	return rec, true
}

// extractTitle reads the structured title block: the span holds the series
// and the remaining text is the issue title. A bare title div is the fallback.
func (e *IssueExtractor) extractTitle(doc *goquery.Document, rec *models.IssueRecord) bool {
	block := doc.Find(TitleBlockSelector).First()
	if block.Length() == 0 {
		block = doc.Find(TitleFallbackSelector).First()
		if block.Length() == 0 {
			return false
		}
		rec.Title = e.normalizer.Text(block)
		return rec.Title != ""
	}

	span := block.Find("span").First()
	if span.Length() == 0 {
		rec.Title = e.normalizer.Text(block)
		return rec.Title != ""
	}

	rec.SeriesName = e.normalizer.Text(span)
	rest := block.Clone()
	rest.Find("span").First().Remove()
	rec.Title = strings.Trim(e.normalizer.Text(rest), " :-–")

	return rec.Title != "" || rec.SeriesName != ""
}

// extractIssueNumber reads "Nº N de <collection> [de M]"
func (e *IssueExtractor) extractIssueNumber(doc *goquery.Document, rec *models.IssueRecord) {
	var container *goquery.Selection
	doc.Find("strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, "Nº") || strings.Contains(text, "N°") {
			container = inlineRun(s)
			return false
		}
		return true
	})
	if container == nil {
		return
	}

	text := e.normalizer.Text(container)
	if m := e.regexes["issueNumber"].FindStringSubmatch(text); m != nil {
		number := strings.TrimSpace(m[1])
		// "Nº 3 de SERIE" keeps only the number part
		if i := strings.Index(strings.ToLower(number), " de "); i > 0 {
			number = strings.TrimSpace(number[:i])
		}
		rec.IssueNumber = number
	}

	if link := container.Filter(CollectionLinkSel).AddSelection(container.Find(CollectionLinkSel)).First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok {
			rec.CollectionURL = models.AbsoluteURL(e.baseURL, href)
		}
		if rec.SeriesName == "" {
			rec.SeriesName = e.normalizer.Text(link)
		}
	}

	if m := e.regexes["totalCount"].FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rec.TotalCount = &n
		}
	}
}

// inlineRun is s followed by its sibling nodes up to the first block-level
// element or caption, so a caption outside any wrapper does not pull in the
// whole page.
func inlineRun(s *goquery.Selection) *goquery.Selection {
	run := s.First()
	for n := run.Get(0).NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && runStops[n.Data] {
			break
		}
		run = run.AddNodes(n)
	}
	return run
}

var runStops = map[string]bool{
	"div": true, "p": true, "br": true, "table": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "hr": true, "strong": true,
}

// extractPublisher reads "<a>PUBLISHER</a> · <span>LOCATION</span> · <img alt=COUNTRY>"
func (e *IssueExtractor) extractPublisher(doc *goquery.Document, rec *models.IssueRecord) {
	doc.Find(PublisherLinkSel).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		name := e.normalizer.Text(link)
		if name == "" {
			return true
		}
		rec.Publisher = name
		rec.PublisherLocation = e.normalizer.Text(link.NextAllFiltered("span").First())
		if alt, ok := link.NextAllFiltered("img").First().Attr("alt"); ok {
			rec.PublisherCountry = Flatten(alt)
		}
		return false
	})
}

// fillFromURL derives the key, and the issue number when the page shows
// none, from the issue slug.
func (e *IssueExtractor) fillFromURL(rec *models.IssueRecord, pageURL string) {
	m := e.regexes["issueLink"].FindStringSubmatch(pageURL)
	if m == nil {
		return
	}
	rec.Key = m[1]
	if rec.IssueNumber == "" {
		if n := e.regexes["slugNumber"].FindStringSubmatch(rec.Key); n != nil {
			rec.IssueNumber = n[1]
		}
	}
}

func (e *IssueExtractor) collectTexts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = appendUnique(out, e.normalizer.Text(s))
	})
	return out
}

func intPtr(v int) *int {
	return &v
}
