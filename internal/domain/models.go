package domain

import (
	"sort"
	"strings"
	"time"
)

type TournamentType string

const (
	TournamentSwiss TournamentType = "swiss"
	TournamentArena TournamentType = "arena"
)

type ParticipantSource string

const (
	SourceLeaderboard    ParticipantSource = "leaderboard"
	SourceRosterFallback ParticipantSource = "roster-fallback"
)

type Club struct {
	// ID is the URL-friendly slug; ProviderID the numeric chess.com
	// club_id used by the internal web API.
	ID           string `json:"id"`
	ProviderID   string `json:"provider_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Country      string `json:"country,omitempty"`
	URL          string `json:"url,omitempty"`
	MembersCount int    `json:"members_count"`
	CreatedAt    int64  `json:"created_at,omitempty"`
	Location     string `json:"location,omitempty"`
}

type Member struct {
	Username string `json:"username"`
	Rating   *int   `json:"rating,omitempty"`
	Title    string `json:"title,omitempty"`
	JoinedAt int64  `json:"joined_at,omitempty"`
	// Activity is the public-API grouping the member came from:
	// "weekly", "monthly", or "all_time".
	Activity string `json:"activity,omitempty"`
}

type PlayerProfile struct {
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Country    string `json:"country,omitempty"`
	Status     string `json:"status,omitempty"`
	Joined     int64  `json:"joined,omitempty"`
	LastOnline int64  `json:"last_online,omitempty"`
}

type Tournament struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           TournamentType `json:"type"`
	Status         string         `json:"status"`
	StartDate      int64          `json:"start_date"`
	EndDate        int64          `json:"end_date"`
	PlayerCount    int            `json:"player_count"`
	WinnerUsername string         `json:"winner_username,omitempty"`
	WinnerScore    *float64       `json:"winner_score,omitempty"`
	ClubSlug       string         `json:"club_slug,omitempty"`
}

type TournamentResult struct {
	TournamentID string   `json:"tournament_id"`
	Player       string   `json:"player"`
	Position     int      `json:"position"`
	Score        *float64 `json:"score,omitempty"`
	Rating       *int     `json:"rating,omitempty"`
}

// ParticipantSet holds the usernames eligible to have their games
// counted toward a tournament, plus where the set came from so callers
// can see whether the leaderboard or the roster fallback produced it.
type ParticipantSet struct {
	usernames map[string]struct{}
	Source    ParticipantSource
}

func NewParticipantSet(source ParticipantSource, usernames ...string) ParticipantSet {
	set := ParticipantSet{
		usernames: make(map[string]struct{}, len(usernames)),
		Source:    source,
	}
	for _, u := range usernames {
		set.Add(u)
	}
	return set
}

func (s *ParticipantSet) Add(username string) {
	if s.usernames == nil {
		s.usernames = make(map[string]struct{})
	}
	s.usernames[strings.ToLower(username)] = struct{}{}
}

func (s ParticipantSet) Contains(username string) bool {
	_, ok := s.usernames[strings.ToLower(username)]
	return ok
}

func (s ParticipantSet) Len() int {
	return len(s.usernames)
}

// Usernames returns the lowercased members in sorted order.
func (s ParticipantSet) Usernames() []string {
	usernames := make([]string, 0, len(s.usernames))
	for u := range s.usernames {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)
	return usernames
}

// Window is the inclusive time range a game must end inside to count
// toward a tournament. Timestamps are unix seconds.
type Window struct {
	Start int64
	End   int64
}

// WindowFor pads the tournament end by the buffer so final-round games
// that finish after the scheduled end are still captured.
func WindowFor(t Tournament, buffer time.Duration) Window {
	end := t.EndDate
	if t.StartDate > end {
		end = t.StartDate
	}
	return Window{
		Start: t.StartDate,
		End:   end + int64(buffer.Seconds()),
	}
}

func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

type Game struct {
	White         string   `json:"white"`
	Black         string   `json:"black"`
	Result        string   `json:"result"`
	OpeningECO    string   `json:"opening_eco,omitempty"`
	PGN           string   `json:"pgn,omitempty"`
	PlayedAt      int64    `json:"played_at"`
	WhiteAccuracy *float64 `json:"white_accuracy,omitempty"`
	BlackAccuracy *float64 `json:"black_accuracy,omitempty"`
	TournamentID  string   `json:"tournament_id,omitempty"`
	// URL uniquely identifies the game and is the deduplication key.
	URL string `json:"url"`
}

// AvgAccuracy returns the mean of both sides' accuracy scores, or false
// when either side lacks one (game review was not run).
func (g Game) AvgAccuracy() (float64, bool) {
	if g.WhiteAccuracy == nil || g.BlackAccuracy == nil {
		return 0, false
	}
	return (*g.WhiteAccuracy + *g.BlackAccuracy) / 2, true
}
