package scraper

import (
	"context"
	"errors"
	"log"
	"net/url"

	"tebeosfera-scraper/internal/models"
)

// PageFetcher is the transport the scraper reads the site through.
// Implementations own timeouts, headers and decoding; callers pass absolute URLs.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	DataFetcher
}

// HybridFetcher reads pages over HTTP first and renders them in a browser
// when that fails. Images and data calls always go over HTTP.
type HybridFetcher struct {
	http    *HTTPClient
	browser *BrowserClient
	logger  *log.Logger
}

func NewHybridFetcher(httpClient *HTTPClient, browser *BrowserClient, logger *log.Logger) *HybridFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &HybridFetcher{http: httpClient, browser: browser, logger: logger}
}

func (f *HybridFetcher) Fetch(ctx context.Context, target string) (string, error) {
	page, err := f.http.Fetch(ctx, target)
	if err == nil {
		return page, nil
	}

	var invalid *models.InvalidURLError
	if errors.As(err, &invalid) || ctx.Err() != nil {
		return "", err
	}

	f.logger.Printf("[fetch] http failed for %s, rendering in browser: %v", target, err)
	page, browserErr := f.browser.Fetch(ctx, target)
	if browserErr != nil {
		return "", errors.Join(err, browserErr)
	}
	return page, nil
}

func (f *HybridFetcher) FetchBytes(ctx context.Context, target string) ([]byte, error) {
	return f.http.FetchBytes(ctx, target)
}

func (f *HybridFetcher) FetchViaDataCall(ctx context.Context, endpoint string, params url.Values) (*DataResponse, error) {
	return f.http.FetchViaDataCall(ctx, endpoint, params)
}
