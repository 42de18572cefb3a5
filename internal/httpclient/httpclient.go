// Package httpclient holds the request plumbing shared by the external API clients.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/HazeMiya/ai-2024/internal/errors"
)

// DefaultTimeout bounds every request made by the pipeline clients.
const DefaultTimeout = 15 * time.Second

// userAgent identifies the pipeline to public APIs that ask for one.
const userAgent = "bookprep/1.0 (+https://github.com/HazeMiya/ai-2024)"

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// New returns an *http.Client with the default timeout.
func New() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Get performs a GET request and returns the response body.
// A 429 response becomes a RateLimitError.
func Get(ctx context.Context, doer HTTPDoer, service, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", service, err)
	}
	return do(doer, service, req)
}

// PostJSON sends payload as a JSON body and decodes the JSON response into target.
func PostJSON(ctx context.Context, doer HTTPDoer, service, endpoint string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := do(doer, service, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("%s: decoding response: %w", service, err)
	}
	return nil
}

func do(doer HTTPDoer, service string, req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		msg := service + " rate limit exceeded"
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return nil, apperrors.NewRateLimitErrorWithRetry(msg, time.Duration(secs)*time.Second)
		}
		return nil, apperrors.NewRateLimitError(msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Service: service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", service, err)
	}
	return body, nil
}

// GetJSON performs a GET request and decodes the JSON body into target.
func GetJSON(ctx context.Context, doer HTTPDoer, service, endpoint string, target any) error {
	body, err := Get(ctx, doer, service, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%s: decoding response: %w", service, err)
	}
	return nil
}

// GetXML performs a GET request and decodes the XML body into target.
func GetXML(ctx context.Context, doer HTTPDoer, service, endpoint string, target any) error {
	body, err := Get(ctx, doer, service, endpoint)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%s: decoding response: %w", service, err)
	}
	return nil
}

// BuildURL joins base and path and encodes params as the query string.
func BuildURL(base, path string, params url.Values) string {
	u := strings.TrimSuffix(base, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
