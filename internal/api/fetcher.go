package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmellojr/chessclub/internal/auth"
	"github.com/cmellojr/chessclub/internal/config"
	"github.com/cmellojr/chessclub/internal/constants"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// Fetcher performs single GET requests against the platform. The only
// status it ever retries is HTTP 429, with exponential back-off; every
// other status is handed back to the caller untouched. Transport
// failures surface as errors, never as status codes.
type Fetcher struct {
	client  *fasthttp.Client
	headers map[string]string
	cookies map[string]string
	timeout time.Duration
	logger  zerolog.Logger
	backoff func() retry.Backoff
}

type FetcherOption func(*Fetcher)

// WithBackoff replaces the retry schedule. Tests use it to avoid
// sleeping through the real 1s/2s/4s ladder.
func WithBackoff(backoff func() retry.Backoff) FetcherOption {
	return func(f *Fetcher) {
		f.backoff = backoff
	}
}

func NewFetcher(cfg *config.Config, creds auth.Provider, logger zerolog.Logger, opts ...FetcherOption) *Fetcher {
	headers := map[string]string{
		"User-Agent":       cfg.UserAgent,
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json",
	}
	cookies := map[string]string{}
	if creds != nil && creds.IsAuthenticated() {
		c := creds.Credentials()
		for name, value := range c.Headers {
			headers[name] = value
		}
		for name, value := range c.Cookies {
			cookies[name] = value
		}
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.ExternalAPITimeout
	}

	f := &Fetcher{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		headers: headers,
		cookies: cookies,
		timeout: timeout,
		logger:  logger,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(
				constants.RateLimitMaxRetries,
				retry.NewExponential(constants.RateLimitBackoffBase),
			)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Do issues a GET for url with params appended to the query string.
// On HTTP 429 the request is retried per the back-off schedule; if the
// rate limit persists the returned error unwraps to ErrRateLimited.
func (f *Fetcher) Do(ctx context.Context, url string, params map[string]string) (*NetworkResponse, error) {
	var result *NetworkResponse

	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		status, body, err := f.once(ctx, url, params)
		if err != nil {
			return err
		}
		if status == fasthttp.StatusTooManyRequests {
			f.logger.Warn().Str("url", url).Msg("rate limited, backing off")
			return retry.RetryableError(&PlatformError{URL: url, StatusCode: status})
		}
		result = &NetworkResponse{StatusCode: status, Payload: body}
		return nil
	})
	if err != nil {
		var platformErr *PlatformError
		if errors.As(err, &platformErr) {
			return nil, fmt.Errorf("retries exhausted: %w", platformErr)
		}
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}

	return result, nil
}

func (f *Fetcher) once(ctx context.Context, url string, params map[string]string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	for key, value := range params {
		req.URI().QueryArgs().Set(key, value)
	}
	for name, value := range f.headers {
		req.Header.Set(name, value)
	}
	for name, value := range f.cookies {
		req.Header.SetCookie(name, value)
	}

	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	// A context without a deadline still gets one, derived from the
	// configured request timeout, so no caller can hang a fetch.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(f.timeout)
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())

	return resp.StatusCode(), body, nil
}
