package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"tebeosfera-scraper/internal/models"
	"tebeosfera-scraper/internal/scraper"
)

const (
	defaultTimeoutMs = 60000
	maxTimeoutMs     = 240000
	minTimeoutMs     = 1000
)

// APIHandler serves the scraper over JSON
type APIHandler struct {
	scraper *scraper.Scraper
	logger  *log.Logger
}

func NewAPIHandler(s *scraper.Scraper, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &APIHandler{scraper: s, logger: logger}
}

// Routes returns the API mux
func (h *APIHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", h.wrap(h.search))
	mux.HandleFunc("/issues", h.wrap(h.issues))
	mux.HandleFunc("/issue", h.wrap(h.issue))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// wrap applies the shared headers, method check, timeout and logging
func (h *APIHandler) wrap(next func(ctx context.Context, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			h.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			return
		}

		h.logger.Printf("[api] %s %s", r.Method, r.URL.String())

		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(requestTimeout(r))*time.Millisecond)
		defer cancel()

		next(ctx, w, r)
	}
}

func (h *APIHandler) search(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.errorResponse(w, http.StatusBadRequest, `Missing "q" query parameter`, "")
		return
	}

	start := time.Now()
	if r.URL.Query().Get("group") == "true" {
		groups, err := h.scraper.SearchSeries(ctx, query)
		if err != nil {
			h.failure(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, models.SeriesResponse{Results: groups, Metadata: metadata(h.scraper.SearchURL(query), start)})
		return
	}

	stubs, err := h.scraper.Search(ctx, query)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.SearchResponse{Results: stubs, Metadata: metadata(h.scraper.SearchURL(query), start)})
}

func (h *APIHandler) issues(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("series")
	if key == "" {
		h.errorResponse(w, http.StatusBadRequest, `Missing "series" query parameter`, "")
		return
	}

	start := time.Now()
	issues, err := h.scraper.SeriesIssues(ctx, key)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.SearchResponse{Results: issues, Metadata: metadata(key, start)})
}

func (h *APIHandler) issue(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var ref models.Ref
	switch q := r.URL.Query(); {
	case q.Get("key") != "":
		ref = models.IssueKey(q.Get("key"))
	case q.Get("url") != "":
		ref = models.RawURL(q.Get("url"))
	default:
		h.errorResponse(w, http.StatusBadRequest, `Missing "key" or "url" query parameter`, "")
		return
	}

	start := time.Now()
	record, err := h.scraper.Issue(ctx, ref)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.IssueResponse{Issue: record, Metadata: metadata(record.WebURL, start)})
}

// failure maps scraper errors onto status codes
func (h *APIHandler) failure(w http.ResponseWriter, err error) {
	var (
		notIssue    *models.NotIssuePageError
		invalidURL  *models.InvalidURLError
		httpErr     *models.HTTPError
		timeoutErr  *models.TimeoutError
		contentType *models.ContentTypeError
	)

	switch {
	case errors.As(err, &notIssue):
		h.errorResponse(w, http.StatusNotFound, "Not an issue page", err.Error())
	case errors.As(err, &invalidURL):
		h.errorResponse(w, http.StatusBadRequest, "Invalid URL", err.Error())
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		h.errorResponse(w, http.StatusGatewayTimeout, "Scrape took too long", err.Error())
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		h.errorResponse(w, http.StatusNotFound, "Page not found", err.Error())
	case errors.As(err, &httpErr), errors.As(err, &contentType):
		h.errorResponse(w, http.StatusBadGateway, "Upstream error", err.Error())
	default:
		h.logger.Printf("[api] error processing request: %v", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to scrape", err.Error())
	}
}

func (h *APIHandler) errorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	h.writeJSON(w, statusCode, models.ErrorResponse{Error: message, Details: details})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Printf("[api] failed to write response: %v", err)
	}
}

// requestTimeout reads the timeout parameter, clamped to [1s, 4m]
func requestTimeout(r *http.Request) int {
	timeoutMs := defaultTimeoutMs
	if parsed, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil {
		timeoutMs = parsed
	}
	return min(max(timeoutMs, minTimeoutMs), maxTimeoutMs)
}

func metadata(url string, start time.Time) models.Metadata {
	return models.Metadata{
		URL:        url,
		ScrapedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}
