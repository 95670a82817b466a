package service

import (
	"context"
	"sort"
	"time"

	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/constants"
	"github.com/cmellojr/chessclub/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// GameService collects tournament games by cross-referencing each
// participant's public monthly archive against the tournament window.
type GameService struct {
	client      *api.Client
	tournaments *TournamentService
	logger      zerolog.Logger
}

func NewGameService(client *api.Client, tournaments *TournamentService, logger zerolog.Logger) *GameService {
	return &GameService{client: client, tournaments: tournaments, logger: logger}
}

// CollectOptions tunes the aggregate collector.
type CollectOptions struct {
	// LastN restricts collection to the N most recent tournaments by
	// end date. Zero means all.
	LastN int
	// MinAccuracy drops games below the floor and games without
	// accuracy data entirely.
	MinAccuracy *float64
}

// GamesForTournament returns the deduplicated games played inside one
// tournament: both sides must be participants and the game must end
// inside the buffered tournament window.
func (s *GameService) GamesForTournament(ctx context.Context, t domain.Tournament) ([]domain.Game, error) {
	if t.StartDate == 0 || t.EndDate == 0 {
		return nil, nil
	}

	participants, err := s.tournaments.ResolveParticipants(ctx, t)
	if err != nil {
		return nil, err
	}
	if participants.Len() == 0 {
		return nil, nil
	}

	window := domain.WindowFor(t, constants.WindowEndBuffer)
	months := monthsInRange(window.Start, window.End)

	s.logger.Info().
		Str("tournament_id", t.ID).
		Int("participants", participants.Len()).
		Str("participant_source", string(participants.Source)).
		Int("months", len(months)).
		Msg("collecting tournament games")

	type task struct {
		username string
		year     int
		month    time.Month
	}
	var tasks []task
	for _, username := range participants.Usernames() {
		for _, m := range months {
			tasks = append(tasks, task{username, m.year, m.month})
		}
	}

	// Each fetch is independent and idempotent (cached by request
	// signature), so the fan-out never changes observable results.
	// Results land in a fixed slot per task to keep merge order
	// deterministic.
	results := make([][]domain.Game, len(tasks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.ArchiveFetchWorkers)

	for i, tk := range tasks {
		g.Go(func() error {
			archive, err := s.client.MonthlyArchive(gCtx, tk.username, tk.year, tk.month)
			if err != nil {
				return err
			}

			var kept []domain.Game
			for _, game := range archive {
				if !window.Contains(game.PlayedAt) {
					continue
				}
				if !participants.Contains(game.White) || !participants.Contains(game.Black) {
					continue
				}
				game.TournamentID = t.ID
				kept = append(kept, game)
			}
			results[i] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Both players of a game list it in their own archives; dedupe by
	// URL, first occurrence wins.
	seen := make(map[string]struct{})
	var games []domain.Game
	for _, batch := range results {
		for _, game := range batch {
			if _, ok := seen[game.URL]; ok {
				continue
			}
			seen[game.URL] = struct{}{}
			games = append(games, game)
		}
	}

	s.logger.Info().Str("tournament_id", t.ID).Int("count", len(games)).Msg("tournament games collected")
	return games, nil
}

// GamesAcross merges the games of several tournaments, deduplicates by
// URL (first occurrence wins), and ranks by average accuracy descending
// with accuracy-less games last.
func (s *GameService) GamesAcross(ctx context.Context, tournaments []domain.Tournament, opts CollectOptions) ([]domain.Game, error) {
	selected := make([]domain.Tournament, len(tournaments))
	copy(selected, tournaments)

	// Newest first, so LastN always selects the most recent events
	// regardless of the order the pager produced them.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].EndDate > selected[j].EndDate
	})
	if opts.LastN > 0 && opts.LastN < len(selected) {
		selected = selected[:opts.LastN]
	}

	seen := make(map[string]struct{})
	var games []domain.Game
	for _, t := range selected {
		collected, err := s.GamesForTournament(ctx, t)
		if err != nil {
			return nil, err
		}
		for _, game := range collected {
			if _, ok := seen[game.URL]; ok {
				continue
			}
			seen[game.URL] = struct{}{}
			games = append(games, game)
		}
	}

	if opts.MinAccuracy != nil {
		games = filterByAccuracy(games, *opts.MinAccuracy)
	}
	rankByAccuracy(games)
	return games, nil
}

// GamesForClub lists the club's tournaments and collects across them.
func (s *GameService) GamesForClub(ctx context.Context, slug string, opts CollectOptions) ([]domain.Game, error) {
	tournaments, err := s.tournaments.List(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.GamesAcross(ctx, tournaments, opts)
}

func filterByAccuracy(games []domain.Game, floor float64) []domain.Game {
	kept := games[:0]
	for _, g := range games {
		avg, ok := g.AvgAccuracy()
		if !ok || avg < floor {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

// rankByAccuracy sorts best-to-worst by average accuracy; games lacking
// accuracy data sink to the end, keeping their relative order.
func rankByAccuracy(games []domain.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, aok := games[i].AvgAccuracy()
		b, bok := games[j].AvgAccuracy()
		if aok && bok {
			return a > b
		}
		return aok && !bok
	})
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthsInRange returns every UTC calendar month overlapping the
// inclusive unix-second range.
func monthsInRange(startTS, endTS int64) []yearMonth {
	start := time.Unix(startTS, 0).UTC()
	end := time.Unix(endTS, 0).UTC()

	var months []yearMonth
	year, month := start.Year(), start.Month()
	for year < end.Year() || (year == end.Year() && month <= end.Month()) {
		months = append(months, yearMonth{year, month})
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return months
}
