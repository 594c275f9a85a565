package scraper

import (
	"strings"

	"tebeosfera-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ImageExtractor collects the cover and gallery image URLs of an issue page
type ImageExtractor struct {
	baseURL string
}

func NewImageExtractor(baseURL string) *ImageExtractor {
	return &ImageExtractor{baseURL: baseURL}
}

// ExtractIssueImages returns absolute image URLs, cover first, then every
// gallery image in page order, without duplicates.
func (ie *ImageExtractor) ExtractIssueImages(doc *goquery.Document) []string {
	var candidates []string

	cover := doc.Find(CoverImageSelector).First()
	if src := ie.imageSource(cover); src != "" {
		candidates = append(candidates, src)
		if href, ok := cover.Closest("a").Attr("href"); ok && isImagePath(href) {
			candidates = append(candidates, ie.toAbsoluteURL(href))
		}
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := ie.imageSource(img)
		if strings.Contains(src, GallerySrcFragment) {
			candidates = append(candidates, src)
		}
	})

	return ie.uniqueURLs(candidates)
}

// imageSource reads src, falling back to the lazy-loading attributes
func (ie *ImageExtractor) imageSource(img *goquery.Selection) string {
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "data-src", "data-original"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return ie.toAbsoluteURL(v)
		}
	}
	return ""
}

// uniqueURLs keeps the first occurrence of every URL
func (ie *ImageExtractor) uniqueURLs(candidates []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}

	return result
}

// toAbsoluteURL converts a relative URL to absolute
func (ie *ImageExtractor) toAbsoluteURL(ref string) string {
	return models.AbsoluteURL(ie.baseURL, ref)
}
