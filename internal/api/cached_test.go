package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmellojr/chessclub/internal/auth"
	"github.com/cmellojr/chessclub/internal/cache"
	"github.com/cmellojr/chessclub/internal/config"
	"github.com/cmellojr/chessclub/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *cache.Store {
	t.Helper()

	cfg := &config.Config{CachePath: filepath.Join(t.TempDir(), "cache.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return cache.NewStore(db, zerolog.Nop())
}

func testCachedFetcher(t *testing.T) (*CachedFetcher, *cache.Store) {
	t.Helper()

	cfg := &config.Config{UserAgent: "chessclub-test", RequestTimeout: 2 * time.Second}
	fetcher := NewFetcher(cfg, auth.NewStaticProvider(cfg), zerolog.Nop(), WithBackoff(fastBackoff))
	store := testStore(t)
	return NewCachedFetcher(fetcher, store, zerolog.Nop()), store
}

func TestCacheKeyDeterminism(t *testing.T) {
	url := "https://www.chess.com/callback/clubs/live/past/777"

	assert.Equal(t, url, cacheKey(url, nil))
	assert.Equal(t, url, cacheKey(url, map[string]string{}))

	a := cacheKey(url, map[string]string{"page": "1", "sort": "date"})
	b := cacheKey(url, map[string]string{"sort": "date", "page": "1"})
	assert.Equal(t, a, b, "parameter order must not change the key")
	assert.Equal(t, url+"?page=1&sort=date", a)
}

func TestGetServesSecondCallFromCache(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"name":"my club"}`)
	}))
	defer ts.Close()

	cf, _ := testCachedFetcher(t)
	url := ts.URL + "/pub/club/my-club"

	first, err := cf.Get(context.Background(), url, nil)
	require.NoError(t, err)
	_, isLive := first.(*NetworkResponse)
	assert.True(t, isLive)

	second, err := cf.Get(context.Background(), url, nil)
	require.NoError(t, err)
	_, isCached := second.(*CachedResponse)
	assert.True(t, isCached, "second call must be served from cache")
	assert.Equal(t, http.StatusOK, second.Status())
	assert.Equal(t, first.Body(), second.Body())

	assert.EqualValues(t, 1, hits.Load(), "cache hit must not touch the network")
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	cf, store := testCachedFetcher(t)
	url := ts.URL + "/pub/club/no-such-club"

	_, err := cf.Get(context.Background(), url, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var platformErr *PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, http.StatusNotFound, platformErr.StatusCode)
	assert.Equal(t, url, platformErr.URL)

	stats, statsErr := store.Stats()
	require.NoError(t, statsErr)
	assert.Equal(t, 0, stats.Total, "failed responses must never be cached")
}

func TestGetUncacheableURLAlwaysFetches(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"access_token":"x"}`)
	}))
	defer ts.Close()

	cf, store := testCachedFetcher(t)
	url := ts.URL + "/oauth/token"

	for i := 0; i < 2; i++ {
		resp, err := cf.Get(context.Background(), url, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status())
	}

	assert.EqualValues(t, 2, hits.Load())

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestGetAuthRequired(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	cf, _ := testCachedFetcher(t)

	_, err := cf.Get(context.Background(), ts.URL+"/callback/clubs/live/past/777", map[string]string{"page": "0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestGetJSONMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer ts.Close()

	cf, _ := testCachedFetcher(t)

	var v map[string]any
	err := cf.GetJSON(context.Background(), ts.URL+"/pub/club/my-club", nil, &v)
	require.Error(t, err)
}
