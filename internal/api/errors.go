package api

import (
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"
)

// Sentinels for the error classes callers branch on. A *PlatformError
// unwraps to the sentinel matching its status code, so errors.Is works
// while the URL and status stay available through errors.As.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limited")
)

// PlatformError is a non-200 answer from the upstream platform,
// carrying enough context to diagnose which endpoint failed.
type PlatformError struct {
	URL        string
	StatusCode int
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("chess.com returned %d for %s", e.StatusCode, e.URL)
}

func (e *PlatformError) Unwrap() error {
	switch e.StatusCode {
	case fasthttp.StatusUnauthorized:
		return ErrAuthRequired
	case fasthttp.StatusNotFound:
		return ErrNotFound
	case fasthttp.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}
