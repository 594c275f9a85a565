// Package models defines typed errors for better error handling and context.
package models

import "fmt"

// TimeoutError represents a timeout error
type TimeoutError struct {
	Operation string
	Timeout   string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s after %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// InvalidURLError represents an invalid URL error
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %s: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// HTTPError represents an HTTP-related error
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %v", e.StatusCode, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ContentTypeError is returned when a page answers with a type we cannot parse
type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content-type %q for URL %s", e.ContentType, e.URL)
}

// NotIssuePageError means the fetched page has no issue title block
type NotIssuePageError struct {
	URL string
}

func (e *NotIssuePageError) Error() string {
	return fmt.Sprintf("no issue record found at %s", e.URL)
}

// UnsupportedError marks operations a fetcher implementation cannot perform
type UnsupportedError struct {
	Operation string
	Fetcher   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Fetcher, e.Operation)
}
