package constants

import "time"

// Cache TTLs per endpoint class. Finished archives and leaderboards are
// immutable on chess.com; the rest changes slowly.
const (
	PastArchiveTTL    = 30 * 24 * time.Hour
	CurrentArchiveTTL = 1 * time.Hour
	PlayerProfileTTL  = 24 * time.Hour
	ClubMembersTTL    = 1 * time.Hour
	ClubInfoTTL       = 24 * time.Hour
	LeaderboardTTL    = 7 * 24 * time.Hour
	TournamentListTTL = 30 * time.Minute
)

// RateLimitMaxRetries is the number of retries after the initial attempt
// when the API answers HTTP 429: at most 4 attempts per fetch, sleeping
// the full 1s, 2s, 4s back-off schedule before giving up.
const (
	RateLimitMaxRetries  = 3
	RateLimitBackoffBase = 1 * time.Second
	RateLimitMaxAttempts = RateLimitMaxRetries + 1
)

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 5 * time.Minute
	ShutdownTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// ArchiveFetchWorkers bounds the participant x month fan-out.
	ArchiveFetchWorkers = 4
	// MemberDetailWorkers bounds the per-member profile fetches.
	MemberDetailWorkers = 4
)

// WindowEndBuffer pads the tournament end: chess.com often stores
// end_time equal to start_time (the scheduled slot, not when the last
// game finished), so final-round games can finish after the official end.
const WindowEndBuffer = 6 * time.Hour
