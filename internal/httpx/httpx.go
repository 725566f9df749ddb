// Package httpx builds the resty clients used for all upstream calls and
// maps transport outcomes onto the error taxonomy the rest of the
// application relies on: unreachable upstream, not-found, and non-2xx
// status. 404 is a lookup miss, never an error condition of its own.
package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var (
	// ErrUnavailable marks transport-level failures (DNS, refused
	// connection, timeout) as distinct from upstream status errors, so
	// callers can present a connectivity message instead of a generic one.
	ErrUnavailable = errors.New("upstream unreachable")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// StatusError is any non-2xx, non-404 upstream response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.Code, e.Path)
}

// New builds a resty client with the base URL and timeout shared by every
// upstream. No automatic retries: listing and search calls are fired once.
func New(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "pulsepoly")
}

// Get performs a GET against the client's base URL and returns the raw body.
func Get(ctx context.Context, rc *resty.Client, path string, query map[string]string) ([]byte, error) {
	req := rc.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "GET %s: %v", path, err)
	}
	return body(resp, path)
}

// Post performs a JSON POST and returns the raw body.
func Post(ctx context.Context, rc *resty.Client, path string, payload any) ([]byte, error) {
	resp, err := rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "POST %s: %v", path, err)
	}
	return body(resp, path)
}

func body(resp *resty.Response, path string) ([]byte, error) {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, errors.Wrap(ErrNotFound, path)
	case resp.IsError():
		return nil, &StatusError{Code: resp.StatusCode(), Path: path}
	}
	return resp.Body(), nil
}
