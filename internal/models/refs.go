package models

import (
	"net/url"
	"strings"
)

// Ref is anything that can be turned into a page URL on the site:
// a series slug, a saga slug, an issue slug or an already formed URL.
type Ref interface {
	isRef()
}

type (
	SeriesKey string
	SagaKey   string
	IssueKey  string
	RawURL    string
)

func (SeriesKey) isRef() {}
func (SagaKey) isRef()   {}
func (IssueKey) isRef()  {}
func (RawURL) isRef()    {}

// ResolveRef builds the absolute URL for ref against the site base URL.
// Relative raw URLs are resolved against baseURL as well.
func ResolveRef(baseURL string, ref Ref) string {
	base := strings.TrimRight(baseURL, "/")
	switch r := ref.(type) {
	case SeriesKey:
		return base + "/colecciones/" + string(r) + ".html"
	case SagaKey:
		return base + "/sagas/" + string(r) + ".html"
	case IssueKey:
		return base + "/numeros/" + string(r) + ".html"
	case RawURL:
		return AbsoluteURL(baseURL, string(r))
	}
	return ""
}

// AbsoluteURL resolves ref against baseURL. Unparseable input is returned unchanged.
func AbsoluteURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(rel).String()
}

// ParseRef interprets user input: an http(s) URL stays raw, anything else is
// treated as an issue slug unless kind says otherwise.
func ParseRef(input string, kind Kind) Ref {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "/") {
		return RawURL(input)
	}
	input = strings.TrimSuffix(input, ".html")
	switch kind {
	case KindSeries:
		return SeriesKey(input)
	case KindSaga:
		return SagaKey(input)
	default:
		return IssueKey(input)
	}
}
