package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmellojr/chessclub/internal/cache"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// CachedFetcher layers the TTL store over the rate-limited fetcher:
// requests whose URL matches a TTL class are served from the cache when
// a valid entry exists, and only HTTP 200 bodies are ever stored.
type CachedFetcher struct {
	fetcher *Fetcher
	store   *cache.Store
	logger  zerolog.Logger
	now     func() time.Time
}

func NewCachedFetcher(fetcher *Fetcher, store *cache.Store, logger zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the response body for url, from cache when possible.
// Any non-200 answer becomes a *PlatformError and is never cached.
func (c *CachedFetcher) Get(ctx context.Context, url string, params map[string]string) (Response, error) {
	ttl, cacheable := cacheTTL(url, c.now().UTC())
	if !cacheable {
		return c.fetchChecked(ctx, url, params)
	}

	key := cacheKey(url, params)
	if body, hit := c.store.Get(key); hit {
		c.logger.Debug().Str("url", url).Msg("cache hit")
		return &CachedResponse{Payload: body}, nil
	}

	resp, err := c.fetchChecked(ctx, url, params)
	if err != nil {
		return nil, err
	}

	// A body that is not valid JSON would be replayed for the whole
	// TTL; let it fail downstream without poisoning the cache.
	if json.Valid(resp.Body()) {
		c.store.Set(key, resp.Body(), ttl)
	}
	return resp, nil
}

// GetJSON decodes the response body for url into v.
func (c *CachedFetcher) GetJSON(ctx context.Context, url string, params map[string]string, v any) error {
	resp, err := c.Get(ctx, url, params)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, v); err != nil {
		return fmt.Errorf("malformed response from %s: %w", url, err)
	}
	return nil
}

func (c *CachedFetcher) fetchChecked(ctx context.Context, url string, params map[string]string) (Response, error) {
	resp, err := c.fetcher.Do(ctx, url, params)
	if err != nil {
		return nil, err
	}
	if resp.Status() != fasthttp.StatusOK {
		return nil, &PlatformError{URL: url, StatusCode: resp.Status()}
	}
	return resp, nil
}

// cacheKey derives the deterministic request signature: the URL alone,
// or the URL plus query parameters serialized in sorted key order so
// that parameter ordering never splits the cache.
func cacheKey(url string, params map[string]string) string {
	if len(params) == 0 {
		return url
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
