package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tebeosfera-scraper/internal/config"
	"tebeosfera-scraper/internal/models"

	"golang.org/x/net/html/charset"
)

// HTTPClient fetches pages, images and data calls over plain HTTP.
// It never retries; a failed request is reported to the caller.
type HTTPClient struct {
	client *http.Client
	config config.ScrapeConfig
}

func NewHTTPClient(cfg config.ScrapeConfig) *HTTPClient {
	// Configure HTTP client with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &HTTPClient{
		client: client,
		config: cfg,
	}
}

// setRequestHeaders sets browser-like headers on the request. Compression is
// requested explicitly, so bodies are inflated by decompress, not the transport.
func (h *HTTPClient) setRequestHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Referer", h.config.BaseURL+"/")
}

// Fetch returns the page at target decoded to UTF-8. Only HTML and XML
// content types are accepted.
func (h *HTTPClient) Fetch(ctx context.Context, target string) (string, error) {
	resp, body, err := h.do(ctx, http.MethodGet, target, nil, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "html") && !strings.Contains(mediaType, "xml") {
		return "", &models.ContentTypeError{URL: target, ContentType: contentType}
	}

	body, err = decompress(body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return "", fmt.Errorf("failed to decompress %s: %w", target, err)
	}

	// The site still serves some pages as ISO-8859-1
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body), nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return string(decoded), nil
}

// FetchBytes returns the raw body at target, used for cover images
func (h *HTTPClient) FetchBytes(ctx context.Context, target string) ([]byte, error) {
	resp, body, err := h.do(ctx, http.MethodGet, target, nil, "image/*,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	return decompress(body, resp.Header.Get("Content-Encoding"))
}

// FetchViaDataCall performs one data-retrieval call. Script endpoints (.php)
// take a form post; page endpoints take the params as a query string.
// The body is returned undecoded for the resolver to validate.
func (h *HTTPClient) FetchViaDataCall(ctx context.Context, endpoint string, params url.Values) (*DataResponse, error) {
	target := models.AbsoluteURL(h.config.BaseURL, endpoint)

	var (
		resp *http.Response
		body []byte
		err  error
	)
	if strings.HasSuffix(strings.SplitN(endpoint, "?", 2)[0], ".php") {
		resp, body, err = h.do(ctx, http.MethodPost, target, params, "*/*")
	} else {
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
		resp, body, err = h.do(ctx, http.MethodGet, target, nil, "*/*")
	}
	if err != nil {
		return nil, err
	}

	return &DataResponse{
		ContentType:     resp.Header.Get("Content-Type"),
		ContentEncoding: resp.Header.Get("Content-Encoding"),
		Body:            body,
	}, nil
}

// do sends one request and reads at most SizeLimitBytes of the answer.
// Statuses of 400 and above become HTTPError.
func (h *HTTPClient) do(ctx context.Context, method, target string, form url.Values, accept string) (*http.Response, []byte, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		if err == nil {
			err = errors.New("absolute http(s) URL required")
		}
		return nil, nil, &models.InvalidURLError{URL: target, Err: err}
	}

	var payload io.Reader
	if form != nil {
		payload = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	h.setRequestHeaders(req, accept)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, nil, &models.TimeoutError{
				Operation: method + " " + target,
				Timeout:   h.client.Timeout.String(),
				Err:       err,
			}
		}
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp, nil, &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        target,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	// Read response body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(h.config.SizeLimitBytes)))
	if err != nil {
		return resp, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
