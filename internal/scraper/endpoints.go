package scraper

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"mime"
	"net/url"
	"strings"
	"sync"

	"tebeosfera-scraper/internal/config"

	"github.com/PuerkitoBio/goquery"
)

// DataResponse is the undecoded answer of a data-retrieval call
type DataResponse struct {
	ContentType     string
	ContentEncoding string
	Body            []byte
}

// DataFetcher performs data-retrieval calls against the site
type DataFetcher interface {
	FetchViaDataCall(ctx context.Context, endpoint string, params url.Values) (*DataResponse, error)
}

// EndpointAttempt is one alternative call that may return a series' issue list
type EndpointAttempt struct {
	Name     string
	Endpoint string
	Params   url.Values
	// FilterSlug keeps only result rows that link to this slug
	FilterSlug string
}

// Attempt names, in default priority order
const (
	AttemptIssuesByID   = "numeros_por_id"
	AttemptChildrenByID = "hijos_por_id"
	AttemptListingByID  = "listado_por_id"
	AttemptSlug         = "slug"
	AttemptNameSearch   = "busqueda"
)

// EndpointMemo remembers the last successful attempt per operation.
// It only reorders attempts, so Reset never changes results.
type EndpointMemo struct {
	mu      sync.Mutex
	winners map[string]string
}

func NewEndpointMemo() *EndpointMemo {
	return &EndpointMemo{winners: make(map[string]string)}
}

func (m *EndpointMemo) Get(operation string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.winners[operation]
	return name, ok
}

func (m *EndpointMemo) Set(operation, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners[operation] = name
}

func (m *EndpointMemo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners = make(map[string]string)
}

// EndpointResolver finds, by trial, the call that returns a series' issue list
type EndpointResolver struct {
	fetcher DataFetcher
	memo    *EndpointMemo
	config  config.EndpointConfig
}

func NewEndpointResolver(fetcher DataFetcher, memo *EndpointMemo, cfg config.EndpointConfig) *EndpointResolver {
	if memo == nil {
		memo = NewEndpointMemo()
	}
	return &EndpointResolver{
		fetcher: fetcher,
		memo:    memo,
		config:  cfg,
	}
}

// Attempts returns the candidate calls for a series, with the memoized
// winner of the issue-listing operation moved to the front.
func (r *EndpointResolver) Attempts(seriesKey, seriesID string) []EndpointAttempt {
	var attempts []EndpointAttempt

	if seriesID != "" {
		attempts = append(attempts,
			EndpointAttempt{
				Name:     AttemptIssuesByID,
				Endpoint: r.config.DataCallPath,
				Params:   url.Values{"xjxfun": {"muestraNumerosColeccion"}, "xjxargs[]": {seriesID}},
			},
			EndpointAttempt{
				Name:     AttemptChildrenByID,
				Endpoint: r.config.DataCallPath,
				Params:   url.Values{"xjxfun": {"muestraHijosColeccion"}, "xjxargs[]": {seriesID}},
			},
			EndpointAttempt{
				Name:     AttemptListingByID,
				Endpoint: "/colecciones/listado.php",
				Params:   url.Values{"id": {seriesID}},
			},
		)
	}

	if seriesKey != "" {
		attempts = append(attempts,
			EndpointAttempt{
				Name:     AttemptSlug,
				Endpoint: "/colecciones/" + seriesKey + ".html",
				Params:   url.Values{"ver": {"numeros"}},
			},
			EndpointAttempt{
				Name:       AttemptNameSearch,
				Endpoint:   "/buscador/" + strings.ReplaceAll(SearchTermFromSlug(seriesKey), " ", "_") + "/",
				FilterSlug: seriesKey,
			},
		)
	}

	if winner, ok := r.memo.Get(OperationListIssues); ok {
		for i, a := range attempts {
			if a.Name == winner && i > 0 {
				reordered := append([]EndpointAttempt{a}, attempts[:i]...)
				attempts = append(reordered, attempts[i+1:]...)
				break
			}
		}
	}

	return attempts
}

// Resolve returns the issue-list HTML of the first attempt whose response
// passes validation, or false when every attempt failed.
func (r *EndpointResolver) Resolve(ctx context.Context, seriesKey, seriesID string) (string, bool) {
	for _, attempt := range r.Attempts(seriesKey, seriesID) {
		if ctx.Err() != nil {
			return "", false
		}

		resp, err := r.fetcher.FetchViaDataCall(ctx, attempt.Endpoint, attempt.Params)
		if err != nil || resp == nil {
			continue
		}

		body, ok := r.validate(resp)
		if !ok {
			continue
		}
		if attempt.FilterSlug != "" {
			if body, ok = filterRowsBySlug(body, attempt.FilterSlug); !ok {
				continue
			}
		}

		r.memo.Set(OperationListIssues, attempt.Name)
		return body, true
	}
	return "", false
}

// validate rejects error pages and empty shells: wrong content type, broken
// compression, short bodies and the search form served in place of results.
func (r *EndpointResolver) validate(resp *DataResponse) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(resp.ContentType)
	if err != nil || !r.allowedType(mediaType) {
		return "", false
	}

	body, err := decompress(resp.Body, resp.ContentEncoding)
	if err != nil {
		return "", false
	}

	text := string(body)
	if strings.Contains(mediaType, "xml") || strings.Contains(text, "<![CDATA[") {
		text = unwrapCDATA(text)
	}

	if len(text) <= r.config.MinBodyBytes {
		return "", false
	}
	if ContainsAny(text, r.config.SearchFormMarkers) {
		return "", false
	}
	return text, true
}

func (r *EndpointResolver) allowedType(mediaType string) bool {
	for _, t := range r.config.ContentTypes {
		if strings.EqualFold(mediaType, t) {
			return true
		}
	}
	return false
}

// decompress inflates gzip or deflate bodies. The gzip magic bytes are
// honored even when the encoding header is missing.
func decompress(body []byte, encoding string) ([]byte, error) {
	encoding = strings.ToLower(encoding)
	switch {
	case strings.Contains(encoding, "gzip") || bytes.HasPrefix(body, []byte{0x1f, 0x8b}):
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case strings.Contains(encoding, "deflate"):
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			return io.ReadAll(zr)
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return io.ReadAll(fr)
	}
	return body, nil
}

// unwrapCDATA returns the concatenated CDATA payloads of an XML data-call
// answer, or the text unchanged when it has none.
func unwrapCDATA(text string) string {
	matches := patterns["cdata"].FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	for _, m := range matches {
		b.WriteString(m[1])
		b.WriteString(SingleNewline)
	}
	return b.String()
}

// filterRowsBySlug keeps the result rows that link to the series slug and
// rebuilds them as an issue section.
func filterRowsBySlug(body, slug string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(`<div class="help-block">Números</div>`)
	kept := 0
	doc.Find(ResultRowSelector).Each(func(_ int, row *goquery.Selection) {
		if row.ParentsFiltered(ResultRowSelector).Length() > 0 {
			return
		}
		linked := false
		row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			linked = strings.Contains(href, "/"+slug)
			return !linked
		})
		if !linked {
			return
		}
		html, err := goquery.OuterHtml(row)
		if err != nil {
			return
		}
		b.WriteString(html)
		kept++
	})

	if kept == 0 {
		return "", false
	}
	return b.String(), true
}

// FindSeriesID returns the numeric collection id embedded in a collection
// page, or "" when the page does not expose one.
func FindSeriesID(pageText string) string {
	for _, name := range []string{"seriesID", "xajaxID"} {
		if m := patterns[name].FindStringSubmatch(pageText); m != nil {
			return m[1]
		}
	}
	return ""
}
