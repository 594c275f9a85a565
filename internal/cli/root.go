package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"
	"tebeosfera-scraper/internal/scraper"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	useBrowser bool
	timeoutMs  int
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "tebeoscan",
	Short: "Comic metadata from tebeosfera.com",
	Long: `tebeoscan searches tebeosfera.com, lists the issues of a series, extracts
full issue records and picks the candidate whose cover matches a local image.

Every command prints JSON on stdout.`,
	SilenceUsage: true,
}

// Execute runs the root command; an interrupt cancels the running request
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&useBrowser, "browser", false, "render pages in headless Chrome when HTTP fails")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 0, "request timeout in milliseconds (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newIssuesCmd())
	rootCmd.AddCommand(newIssueCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tebeoscan version %s\n", version)
		},
	}
}

// loadConfig reads the config file when one is found and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if timeoutMs > 0 {
		cfg.Scrape.TimeoutMs = timeoutMs
	}
	return cfg, nil
}

// newScraper builds the scraper the commands share
func newScraper() (*scraper.Scraper, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	httpClient := scraper.NewHTTPClient(cfg.Scrape)
	var fetcher scraper.PageFetcher = httpClient
	if useBrowser {
		fetcher = scraper.NewHybridFetcher(httpClient, scraper.NewBrowserClient(cfg.Scrape), logger)
	}

	return scraper.NewScraper(cfg, fetcher, scraper.NewEndpointMemo(), logger), nil
}

func metadata(url string, start time.Time) models.Metadata {
	return models.Metadata{
		URL:        url,
		ScrapedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
