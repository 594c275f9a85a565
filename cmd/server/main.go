package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/scraper"
)

func main() {
	cfg, err := config.LoadOrDefault(config.FindConfigPath(os.Getenv("TEBEOSCAN_CONFIG")))
	if err != nil {
		log.Fatalf("[server] failed to load config: %v", err)
	}

	logger := log.Default()
	httpClient := scraper.NewHTTPClient(cfg.Scrape)
	var fetcher scraper.PageFetcher = httpClient
	if os.Getenv("TEBEOSCAN_BROWSER") == "true" {
		fetcher = scraper.NewHybridFetcher(httpClient, scraper.NewBrowserClient(cfg.Scrape), logger)
	}

	// one memo for the process, shared by every request
	s := scraper.NewScraper(cfg, fetcher, scraper.NewEndpointMemo(), logger)
	handler := NewAPIHandler(s, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Printf("[server] listening on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		logger.Printf("[server] failed to start: %v", err)
		os.Exit(1)
	}
}
