package scraper

import (
	"tebeosfera-scraper/internal/config"

	"github.com/chromedp/chromedp"
)

// BrowserOptions contains configuration for browser automation
type BrowserOptions struct {
	BlockImages  bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
}

// DefaultBrowserOptions returns the options used for page rendering.
// Only markup is read back, so images are never loaded.
func DefaultBrowserOptions(cfg config.ScrapeConfig) BrowserOptions {
	return BrowserOptions{
		BlockImages:  true,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		UserAgent:    cfg.UserAgent,
	}
}

// BuildChromeOptions creates Chrome options based on BrowserOptions
func BuildChromeOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	chromeOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("lang", "es-ES"),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)

	if opts.UserAgent != "" {
		chromeOpts = append(chromeOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.BlockImages {
		chromeOpts = append(chromeOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	return chromeOpts
}
