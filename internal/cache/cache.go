// Package cache is a persistent TTL-aware store for upstream response
// bodies, keyed by request signature. Caching is strictly an
// optimization: reads never fail the caller and write failures are
// swallowed, so a broken or read-only cache degrades to plain network
// fetches.
package cache

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

type Stats struct {
	Total     int   `json:"total"`
	Active    int   `json:"active"`
	Expired   int   `json:"expired"`
	SizeBytes int64 `json:"size_bytes"`
}

func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Get returns the cached body for key, or false on miss. An entry read
// past its expiry is deleted and reported as a miss. Never returns an
// error: any storage failure is treated as a miss.
func (s *Store) Get(key string) ([]byte, bool) {
	var (
		expiresAt float64
		body      []byte
	)
	err := s.db.QueryRow(
		"SELECT expires_at, body FROM http_cache WHERE key = ?", key,
	).Scan(&expiresAt, &body)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}

	if nowUnix() > expiresAt {
		if _, err := s.db.Exec("DELETE FROM http_cache WHERE key = ?", key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to delete expired cache entry")
		}
		return nil, false
	}

	return body, true
}

// Set upserts (key, now+ttl, body). Failures are logged and swallowed
// so that a read-only filesystem never breaks a fetch.
func (s *Store) Set(key string, body []byte, ttl time.Duration) {
	_, err := s.db.Exec(`
		INSERT INTO http_cache (key, expires_at, body) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			expires_at = excluded.expires_at,
			body = excluded.body
	`, key, nowUnix()+ttl.Seconds(), body)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed, skipping")
	}
}

// Clear removes every entry and returns the number removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec("DELETE FROM http_cache")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeExpired removes entries past their expiry and returns the number
// removed.
func (s *Store) PurgeExpired() (int64, error) {
	res, err := s.db.Exec("DELETE FROM http_cache WHERE expires_at < ?", nowUnix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Stats() (Stats, error) {
	var stats Stats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(expires_at >= ?), 0),
			COALESCE(SUM(length(body)), 0)
		FROM http_cache
	`, nowUnix()).Scan(&stats.Total, &stats.Active, &stats.SizeBytes)
	if err != nil {
		return Stats{}, err
	}
	stats.Expired = stats.Total - stats.Active
	return stats, nil
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
