package scraper

import (
	"strconv"
	"strings"

	"tebeosfera-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// labeledRow dispatches one "label: value" row by a label substring
type labeledRow struct {
	label  string
	handle func(rec *models.IssueRecord, value *goquery.Selection)
}

func (e *IssueExtractor) labeledRows() []labeledRow {
	return []labeledRow{
		{"distribuci", e.handleDistribution},
		{"edici", e.handleEdition},
		{"origen", e.handleOrigin},
		{"lengua", e.handleLanguage},
		{"formato", e.handleFormat},
		{"tama", e.handleDimensions},
		{"paginaci", e.handlePages},
		{"color", e.handleColor},
		{"registros", e.handleRegistries},
		{"sello", e.handleImprint},
	}
}

// extractLabeledRows runs every row through the first matching handler.
// Rows missing a label or a value, and unknown labels, are ignored.
func (e *IssueExtractor) extractLabeledRows(doc *goquery.Document, rec *models.IssueRecord) {
	doc.Find(LabeledRowSelector).Each(func(_ int, row *goquery.Selection) {
		label := row.Find(RowLabelSelector).First()
		value := row.Find(RowValueSelector).First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}

		text := strings.ToLower(e.normalizer.Text(label))
		for _, h := range e.rowHandlers {
			if strings.Contains(text, h.label) {
				h.handle(rec, value)
				return
			}
		}
	})
}

func (e *IssueExtractor) handleDistribution(rec *models.IssueRecord, value *goquery.Selection) {
	text := e.normalizer.Text(value)

	if m := e.regexes["romanDate"].FindString(text); m != "" {
		rec.ReleaseDate = m
	} else if m := e.regexes["numericDate"].FindString(text); m != "" {
		rec.ReleaseDate = m
	}

	if m := e.regexes["price"].FindStringSubmatch(text); m != nil {
		if code := currencyCode(m[2]); code != "" {
			rec.Price = m[1]
			rec.Currency = code
		}
	}

	value.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		rec.DistributionCountries = appendUnique(rec.DistributionCountries, Flatten(alt))
	})
}

func currencyCode(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	switch {
	case s == "€" || strings.HasPrefix(s, "eur"):
		return "EUR"
	case strings.Contains(s, "$") || s == "usd":
		return "USD"
	case strings.HasPrefix(s, "pta") || s == "pesetas":
		return "ESP"
	}
	return ""
}

func (e *IssueExtractor) handleEdition(rec *models.IssueRecord, value *goquery.Selection) {
	links := e.linkTexts(value)
	if len(links) > 0 {
		rec.Edition = links[0]
	}
	if len(links) > 1 {
		rec.PublicationType = links[1]
	}
	if len(links) > 2 {
		rec.Format = links[2]
	}
}

// handleOrigin splits the value into the original title (plain text), the
// original publisher (entity link) and the country (flag image).
func (e *IssueExtractor) handleOrigin(rec *models.IssueRecord, value *goquery.Selection) {
	rest := value.Clone()
	rest.Find("a[href*='/entidades/'], img").Remove()
	title := strings.Trim(e.normalizer.Text(rest), " ,;·-")
	if title == "" {
		title = e.normalizer.Text(value)
	}
	rec.OriginTitle = title

	if pub := value.Find(PublisherLinkSel).First(); pub.Length() > 0 {
		rec.OriginPublisher = e.normalizer.Text(pub)
	}
	if alt, ok := value.Find("img[alt]").First().Attr("alt"); ok {
		rec.OriginCountry = Flatten(alt)
	}
}

func (e *IssueExtractor) handleLanguage(rec *models.IssueRecord, value *goquery.Selection) {
	rec.Language = e.normalizer.Text(value)
}

func (e *IssueExtractor) handleFormat(rec *models.IssueRecord, value *goquery.Selection) {
	links := e.linkTexts(value)
	if len(links) == 0 {
		if rec.Format == "" {
			rec.Format = e.normalizer.Text(value)
		}
		return
	}
	if rec.Format == "" {
		rec.Format = links[0]
	}
	if len(links) > 1 {
		rec.Binding = links[1]
	}
}

func (e *IssueExtractor) handleDimensions(rec *models.IssueRecord, value *goquery.Selection) {
	rec.Dimensions = e.normalizer.Text(value)
}

func (e *IssueExtractor) handlePages(rec *models.IssueRecord, value *goquery.Selection) {
	m := e.regexes["pages"].FindStringSubmatch(strings.ToLower(e.normalizer.Text(value)))
	if m == nil {
		return
	}
	if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
		rec.PageCount = &n
	}
}

func (e *IssueExtractor) handleColor(rec *models.IssueRecord, value *goquery.Selection) {
	rec.Color = e.normalizer.Text(value)
}

func (e *IssueExtractor) handleRegistries(rec *models.IssueRecord, value *goquery.Selection) {
	text := e.normalizer.Text(value)
	if m := e.regexes["isbn"].FindStringSubmatch(text); m != nil {
		rec.ISBN = m[1]
	}
	if m := e.regexes["legalDeposit"].FindStringSubmatch(text); m != nil {
		rec.LegalDeposit = strings.TrimRight(m[1], ".")
	}
}

func (e *IssueExtractor) handleImprint(rec *models.IssueRecord, value *goquery.Selection) {
	rec.Imprint = e.normalizer.Text(value)
}

func (e *IssueExtractor) linkTexts(value *goquery.Selection) []string {
	var texts []string
	value.Find("a").Each(func(_ int, a *goquery.Selection) {
		if t := e.normalizer.Text(a); t != "" {
			texts = append(texts, t)
		}
	})
	return texts
}
