package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmellojr/chessclub/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cf, _ := testCachedFetcher(t)
	return NewClient(cf, zerolog.Nop(), WithBaseURLs(ts.URL+"/pub", ts.URL))
}

func TestGetClub(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pub/club/my-club", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"club_id": 777,
			"name": "My Club",
			"country": "BR",
			"members_count": 42,
			"created": 1500000000
		}`)
	})

	club, err := testClient(t, mux).GetClub(context.Background(), "my-club")
	require.NoError(t, err)
	assert.Equal(t, "my-club", club.ID)
	assert.Equal(t, "777", club.ProviderID)
	assert.Equal(t, "My Club", club.Name)
	assert.Equal(t, 42, club.MembersCount)
}

func TestGetClubMembersFlattensActivityGroups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pub/club/my-club/members", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"weekly": [{"username": "alice", "joined": 1600000000}],
			"monthly": [{"username": "bob", "joined": 1600000001}],
			"all_time": [{"username": "carol", "joined": 1600000002}]
		}`)
	})

	members, err := testClient(t, mux).GetClubMembers(context.Background(), "my-club")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, "weekly", members[0].Activity)
	assert.Equal(t, "bob", members[1].Username)
	assert.Equal(t, "monthly", members[1].Activity)
	assert.Equal(t, "carol", members[2].Username)
	assert.Equal(t, "all_time", members[2].Activity)
}

func TestListTournamentsPagesUntilEmpty(t *testing.T) {
	var pagesRequested []string
	mux := http.NewServeMux()
	mux.HandleFunc("/callback/clubs/live/past/777", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesRequested = append(pagesRequested, page)
		switch page {
		case "0":
			fmt.Fprint(w, `{
				"live_tournament": [{"id": 1, "name": "Swiss One", "start_time": 100, "end_time": 200, "registered_user_count": 8}],
				"arena": [{"id": 2, "name": "Arena One", "start_time": 300, "end_time": 400, "registered_user_count": 12,
					"winner": {"username": "alice", "score": 9.5}}]
			}`)
		case "1":
			fmt.Fprint(w, `{
				"live_tournament": [{"id": 3, "name": "Swiss Two", "start_time": 500, "end_time": 600, "registered_user_count": 4}],
				"arena": []
			}`)
		default:
			fmt.Fprint(w, `{"live_tournament": [], "arena": []}`)
		}
	})

	tournaments, err := testClient(t, mux).ListTournaments(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, pagesRequested, "pager stops at the first empty page")

	// Tag groups within a page come out in sorted tag order: arena
	// before live_tournament.
	require.Len(t, tournaments, 3)
	assert.Equal(t, "2", tournaments[0].ID)
	assert.Equal(t, domain.TournamentArena, tournaments[0].Type)
	assert.Equal(t, "alice", tournaments[0].WinnerUsername)
	require.NotNil(t, tournaments[0].WinnerScore)
	assert.Equal(t, 9.5, *tournaments[0].WinnerScore)
	assert.Equal(t, "1", tournaments[1].ID)
	assert.Equal(t, domain.TournamentSwiss, tournaments[1].Type)
	assert.Equal(t, "finished", tournaments[1].Status)
	assert.Equal(t, 8, tournaments[1].PlayerCount)
	assert.Equal(t, "3", tournaments[2].ID)
}

func TestListTournamentsUnknownTagFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback/clubs/live/past/777", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"live_tournament": [],
			"arena": [],
			"standard": [{"id": 9, "name": "Mystery", "start_time": 100, "end_time": 200, "registered_user_count": 2}]
		}`)
	})

	_, err := testClient(t, mux).ListTournaments(context.Background(), "777")
	require.Error(t, err, "a tournament under an unrecognized tag must not be silently dropped")
	assert.Contains(t, err.Error(), "standard")
}

func TestTournamentTypeFromTag(t *testing.T) {
	swiss, err := tournamentTypeFromTag("live_tournament")
	require.NoError(t, err)
	assert.Equal(t, domain.TournamentSwiss, swiss)

	arena, err := tournamentTypeFromTag("arena")
	require.NoError(t, err)
	assert.Equal(t, domain.TournamentArena, arena)

	_, err = tournamentTypeFromTag("bullet_brawl")
	assert.Error(t, err, "unrecognized tags are a hard error, not a silent drop")
}

func TestLeaderboardURLPerType(t *testing.T) {
	var requested []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		fmt.Fprint(w, `{"players": [{"username": "alice", "rank": 1, "score": 5.0, "rating": 1800}]}`)
	})

	client := testClient(t, mux)

	results, err := client.Leaderboard(context.Background(), "42", domain.TournamentArena)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].Player)
	assert.Equal(t, 1, results[0].Position)
	require.NotNil(t, results[0].Rating)
	assert.Equal(t, 1800, *results[0].Rating)

	_, err = client.Leaderboard(context.Background(), "42", domain.TournamentSwiss)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/callback/live/tournament/42/leaderboard",
		"/callback/live-tournament/42/leaderboard",
	}, requested, "the type-preferred URL is tried first")
}

func TestLeaderboardProbesAlternateURLOn404(t *testing.T) {
	// Only the arena-shaped URL exists; a swiss-typed lookup must probe
	// it after the preferred shape 404s.
	var requested []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/callback/live/tournament/42/leaderboard" {
			fmt.Fprint(w, `{"players": [{"username": "alice", "rank": 1}]}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	results, err := testClient(t, mux).Leaderboard(context.Background(), "42", domain.TournamentSwiss)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].Player)
	assert.Equal(t, []string{
		"/callback/live-tournament/42/leaderboard",
		"/callback/live/tournament/42/leaderboard",
	}, requested)
}

func TestLeaderboardMissingFromBothURLs(t *testing.T) {
	_, err := testClient(t, http.NewServeMux()).Leaderboard(context.Background(), "42", domain.TournamentArena)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound, "only after both URL shapes 404 does the lookup report not-found")
}

func TestMonthlyArchive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pub/player/alice/games/2024/03", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"games": [
			{
				"url": "https://www.chess.com/game/live/1",
				"end_time": 1710000000,
				"eco": "B40",
				"white": {"username": "Alice", "result": "win"},
				"black": {"username": "Bob", "result": "resigned"},
				"accuracies": {"white": 92.1, "black": 85.3}
			},
			{
				"url": "https://www.chess.com/game/live/2",
				"end_time": 1710000500,
				"white": {"username": "Bob", "result": "stalemate"},
				"black": {"username": "Alice", "result": "stalemate"}
			}
		]}`)
	})

	games, err := testClient(t, mux).MonthlyArchive(context.Background(), "alice", 2024, time.March)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "1-0", games[0].Result)
	assert.Equal(t, "B40", games[0].OpeningECO)
	avg, ok := games[0].AvgAccuracy()
	require.True(t, ok)
	assert.InDelta(t, 88.7, avg, 0.001)

	assert.Equal(t, "1/2-1/2", games[1].Result)
	_, ok = games[1].AvgAccuracy()
	assert.False(t, ok, "games without analysis have no average accuracy")
}

func TestMonthlyArchiveMissingMonth(t *testing.T) {
	mux := http.NewServeMux()
	// No handler for the archive path: the mux answers 404.

	games, err := testClient(t, mux).MonthlyArchive(context.Background(), "ghost", 2024, time.January)
	require.NoError(t, err, "a missing archive month is empty, not an error")
	assert.Empty(t, games)
}

func TestParseGameBlackWin(t *testing.T) {
	g := parseGame(rawGame{
		URL:     "u",
		EndTime: 1,
		White:   rawGameSide{Username: "w", Result: "timeout"},
		Black:   rawGameSide{Username: "b", Result: "win"},
	})
	assert.Equal(t, "0-1", g.Result)
}
