package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cmellojr/chessclub/internal/domain"

	"github.com/rs/zerolog"
)

const (
	// Public API: no authentication required.
	DefaultBaseURL = "https://api.chess.com/pub"
	// Internal web API: needs the session credentials the auth provider
	// injects into the fetcher.
	DefaultWebBaseURL = "https://www.chess.com"
)

// Type tags the tournament-list callback uses for its two formats.
const (
	tagLiveTournament = "live_tournament"
	tagArena          = "arena"
)

// Client exposes the chess.com endpoints the pipeline consumes. All
// requests go through the cache-aware fetcher, which applies the TTL
// policy and the 429 retry schedule transparently.
type Client struct {
	fetch      *CachedFetcher
	logger     zerolog.Logger
	baseURL    string
	webBaseURL string
}

type ClientOption func(*Client)

// WithBaseURLs points the client at alternative hosts. Tests use it to
// target a local fake server.
func WithBaseURLs(base, webBase string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
		c.webBaseURL = webBase
	}
}

func NewClient(fetch *CachedFetcher, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		fetch:      fetch,
		logger:     logger,
		baseURL:    DefaultBaseURL,
		webBaseURL: DefaultWebBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetClub(ctx context.Context, slug string) (*domain.Club, error) {
	var data clubInfoResponse
	url := fmt.Sprintf("%s/club/%s", c.baseURL, slug)
	if err := c.fetch.GetJSON(ctx, url, nil, &data); err != nil {
		return nil, fmt.Errorf("fetching club %s: %w", slug, err)
	}

	club := &domain.Club{
		ID:           slug,
		Name:         data.Name,
		Description:  data.Description,
		Country:      data.Country,
		URL:          data.URL,
		MembersCount: data.MembersCount,
		CreatedAt:    data.Created,
		Location:     data.Location,
	}
	if data.ClubID != 0 {
		club.ProviderID = strconv.FormatInt(data.ClubID, 10)
	}
	return club, nil
}

// GetClubMembers flattens the activity-tier groups of the members
// endpoint into a single list.
func (c *Client) GetClubMembers(ctx context.Context, slug string) ([]domain.Member, error) {
	var data clubMembersResponse
	url := fmt.Sprintf("%s/club/%s/members", c.baseURL, slug)
	if err := c.fetch.GetJSON(ctx, url, nil, &data); err != nil {
		return nil, fmt.Errorf("fetching members of club %s: %w", slug, err)
	}

	var members []domain.Member
	for _, group := range []struct {
		activity string
		entries  []rawMember
	}{
		{"weekly", data.Weekly},
		{"monthly", data.Monthly},
		{"all_time", data.AllTime},
	} {
		for _, m := range group.entries {
			members = append(members, domain.Member{
				Username: m.Username,
				JoinedAt: m.Joined,
				Activity: group.activity,
			})
		}
	}
	return members, nil
}

func (c *Client) GetPlayer(ctx context.Context, username string) (*domain.PlayerProfile, error) {
	var data playerProfileResponse
	url := fmt.Sprintf("%s/player/%s", c.baseURL, username)
	if err := c.fetch.GetJSON(ctx, url, nil, &data); err != nil {
		return nil, fmt.Errorf("fetching player %s: %w", username, err)
	}

	return &domain.PlayerProfile{
		Username:   data.Username,
		Name:       data.Name,
		Title:      data.Title,
		Country:    data.Country,
		Status:     data.Status,
		Joined:     data.Joined,
		LastOnline: data.LastOnline,
	}, nil
}

// ListTournaments walks the paginated past-tournaments callback,
// starting at page 0 and stopping at the first page with zero items.
// Every type tag the page carries is normalized; an unrecognized tag is
// a hard error, never a silent drop. Within a page, tag groups are
// emitted in sorted tag order; callers re-sort as needed.
func (c *Client) ListTournaments(ctx context.Context, clubID string) ([]domain.Tournament, error) {
	url := fmt.Sprintf("%s/callback/clubs/live/past/%s", c.webBaseURL, clubID)

	var tournaments []domain.Tournament
	for page := 0; ; page++ {
		var data map[string][]rawTournament
		params := map[string]string{"page": strconv.Itoa(page)}
		if err := c.fetch.GetJSON(ctx, url, params, &data); err != nil {
			return nil, fmt.Errorf("fetching tournament page %d for club %s: %w", page, clubID, err)
		}

		tags := make([]string, 0, len(data))
		for tag := range data {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		pageCount := 0
		for _, tag := range tags {
			for _, raw := range data[tag] {
				t, err := parseTournament(raw, tag)
				if err != nil {
					return nil, err
				}
				tournaments = append(tournaments, t)
				pageCount++
			}
		}

		if pageCount == 0 {
			break
		}
	}

	c.logger.Debug().Str("club_id", clubID).Int("count", len(tournaments)).Msg("tournaments listed")
	return tournaments, nil
}

// Leaderboard fetches the standings for a finished tournament. Swiss
// and arena events live behind different callback URL shapes; the
// type-preferred shape is tried first, and a 404 there probes the
// alternate shape before the whole lookup reports not-found. Club
// events are sometimes mistagged, so a tournament whose alternate
// leaderboard exists still resolves from it.
func (c *Client) Leaderboard(ctx context.Context, tournamentID string, tournamentType domain.TournamentType) ([]domain.TournamentResult, error) {
	var notFound error
	for _, url := range c.leaderboardURLs(tournamentID, tournamentType) {
		var data leaderboardResponse
		err := c.fetch.GetJSON(ctx, url, nil, &data)
		if errors.Is(err, ErrNotFound) {
			notFound = err
			continue
		}
		if err != nil {
			return nil, err
		}

		results := make([]domain.TournamentResult, 0, len(data.Players))
		for _, raw := range data.Players {
			results = append(results, domain.TournamentResult{
				TournamentID: tournamentID,
				Player:       raw.Username,
				Position:     raw.Rank,
				Score:        raw.Score,
				Rating:       raw.Rating,
			})
		}
		return results, nil
	}
	return nil, notFound
}

// leaderboardURLs returns both candidate URL shapes, the one matching
// tournamentType first.
func (c *Client) leaderboardURLs(tournamentID string, tournamentType domain.TournamentType) []string {
	swiss := fmt.Sprintf("%s/callback/live-tournament/%s/leaderboard", c.webBaseURL, tournamentID)
	arena := fmt.Sprintf("%s/callback/live/tournament/%s/leaderboard", c.webBaseURL, tournamentID)
	if tournamentType == domain.TournamentSwiss {
		return []string{swiss, arena}
	}
	return []string{arena, swiss}
}

// MonthlyArchive returns a player's completed games for one UTC
// calendar month. A 404 means the player has no archive for that month
// and is reported as an empty slice, not an error.
func (c *Client) MonthlyArchive(ctx context.Context, username string, year int, month time.Month) ([]domain.Game, error) {
	url := fmt.Sprintf("%s/player/%s/games/%04d/%02d", c.baseURL, username, year, int(month))

	var data archiveResponse
	if err := c.fetch.GetJSON(ctx, url, nil, &data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching archive %s/%04d/%02d: %w", username, year, int(month), err)
	}

	games := make([]domain.Game, 0, len(data.Games))
	for _, raw := range data.Games {
		games = append(games, parseGame(raw))
	}
	return games, nil
}

// tournamentTypeFromTag maps the two raw callback tags onto the type
// enum. Anything else is a hard error rather than a silent drop.
func tournamentTypeFromTag(tag string) (domain.TournamentType, error) {
	switch tag {
	case tagLiveTournament:
		return domain.TournamentSwiss, nil
	case tagArena:
		return domain.TournamentArena, nil
	}
	return "", fmt.Errorf("unrecognized tournament type tag %q", tag)
}

func parseTournament(raw rawTournament, tag string) (domain.Tournament, error) {
	tournamentType, err := tournamentTypeFromTag(tag)
	if err != nil {
		return domain.Tournament{}, err
	}

	t := domain.Tournament{
		ID:          strconv.FormatInt(raw.ID, 10),
		Name:        raw.Name,
		Type:        tournamentType,
		Status:      "finished",
		StartDate:   raw.StartTime,
		EndDate:     raw.EndTime,
		PlayerCount: raw.RegisteredUserCount,
	}
	if raw.Winner != nil {
		t.WinnerUsername = raw.Winner.Username
		t.WinnerScore = raw.Winner.Score
	}
	return t, nil
}

func parseGame(raw rawGame) domain.Game {
	var result string
	switch {
	case raw.White.Result == "win":
		result = "1-0"
	case raw.Black.Result == "win":
		result = "0-1"
	default:
		result = "1/2-1/2"
	}

	g := domain.Game{
		White:      raw.White.Username,
		Black:      raw.Black.Username,
		Result:     result,
		OpeningECO: raw.ECO,
		PGN:        raw.PGN,
		PlayedAt:   raw.EndTime,
		URL:        raw.URL,
	}
	if raw.Accuracies != nil {
		white, black := raw.Accuracies.White, raw.Accuracies.Black
		g.WhiteAccuracy = &white
		g.BlackAccuracy = &black
	}
	return g
}
