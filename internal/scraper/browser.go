package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"

	"github.com/chromedp/chromedp"
)

const browserFetcherName = "browser"

// BrowserClient renders pages in headless Chrome. It serves pages whose
// result lists are filled in by script; images and data calls are not supported.
type BrowserClient struct {
	config  config.ScrapeConfig
	options BrowserOptions
}

func NewBrowserClient(cfg config.ScrapeConfig) *BrowserClient {
	return &BrowserClient{
		config:  cfg,
		options: DefaultBrowserOptions(cfg),
	}
}

// Fetch navigates to target and returns the rendered document
func (b *BrowserClient) Fetch(ctx context.Context, target string) (string, error) {
	if u, err := url.Parse(target); err != nil || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("absolute URL required")
		}
		return "", &models.InvalidURLError{URL: target, Err: err}
	}

	timeout := time.Duration(b.config.BrowserTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, BuildChromeOptions(b.options)...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(ctx, chromedp.Tasks{
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", &models.TimeoutError{Operation: "render " + target, Timeout: timeout.String(), Err: err}
		}
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	return html, nil
}

func (b *BrowserClient) FetchBytes(ctx context.Context, target string) ([]byte, error) {
	return nil, &models.UnsupportedError{Operation: "FetchBytes", Fetcher: browserFetcherName}
}

func (b *BrowserClient) FetchViaDataCall(ctx context.Context, endpoint string, params url.Values) (*DataResponse, error) {
	return nil, &models.UnsupportedError{Operation: "FetchViaDataCall", Fetcher: browserFetcherName}
}
