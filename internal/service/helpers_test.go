package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/auth"
	"github.com/cmellojr/chessclub/internal/cache"
	"github.com/cmellojr/chessclub/internal/config"
	"github.com/cmellojr/chessclub/internal/database"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
)

// newTestClient wires the full fetch pipeline (fetcher, cache store,
// cache-aware fetcher, client) against a fake chess.com server.
func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		UserAgent:      "chessclub-test",
		RequestTimeout: 2 * time.Second,
		CachePath:      filepath.Join(t.TempDir(), "cache.db"),
	}

	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fetcher := api.NewFetcher(cfg, auth.NewStaticProvider(cfg), zerolog.Nop(),
		api.WithBackoff(func() retry.Backoff {
			return retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond))
		}))
	store := cache.NewStore(db, zerolog.Nop())
	cf := api.NewCachedFetcher(fetcher, store, zerolog.Nop())

	return api.NewClient(cf, zerolog.Nop(), api.WithBaseURLs(ts.URL+"/pub", ts.URL))
}
