package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/domain"

	"github.com/rs/zerolog"
)

type TournamentService struct {
	client *api.Client
	logger zerolog.Logger
}

func NewTournamentService(client *api.Client, logger zerolog.Logger) *TournamentService {
	return &TournamentService{client: client, logger: logger}
}

// List returns every past tournament organised by the club. The club
// lookup resolves the slug to the numeric ID the callback API wants.
func (s *TournamentService) List(ctx context.Context, slug string) ([]domain.Tournament, error) {
	club, err := s.client.GetClub(ctx, slug)
	if err != nil {
		return nil, err
	}
	if club.ProviderID == "" {
		return nil, fmt.Errorf("club %s has no provider id", slug)
	}

	tournaments, err := s.client.ListTournaments(ctx, club.ProviderID)
	if err != nil {
		return nil, err
	}

	for i := range tournaments {
		tournaments[i].ClubSlug = slug
	}

	s.logger.Info().Str("slug", slug).Int("count", len(tournaments)).Msg("tournaments listed")
	return tournaments, nil
}

// Results returns the leaderboard standings for a finished tournament,
// or an empty slice when no leaderboard exists for it.
func (s *TournamentService) Results(ctx context.Context, t domain.Tournament) ([]domain.TournamentResult, error) {
	results, err := s.client.Leaderboard(ctx, t.ID, t.Type)
	if errors.Is(err, api.ErrNotFound) {
		return nil, nil
	}
	return results, err
}

// ResolveParticipants determines the usernames eligible for a
// tournament. The leaderboard is authoritative (the client probes both
// URL shapes, type-preferred first); only when neither exists (404) but
// players did register is the full club roster used, a sound
// approximation because entrants are always drawn from club membership.
// Any other failure, including 401, propagates unchanged.
func (s *TournamentService) ResolveParticipants(ctx context.Context, t domain.Tournament) (domain.ParticipantSet, error) {
	results, err := s.client.Leaderboard(ctx, t.ID, t.Type)
	switch {
	case err == nil:
		set := domain.NewParticipantSet(domain.SourceLeaderboard)
		for _, r := range results {
			set.Add(r.Player)
		}
		return set, nil

	case errors.Is(err, api.ErrNotFound):
		if t.PlayerCount == 0 {
			return domain.NewParticipantSet(domain.SourceLeaderboard), nil
		}
		if t.ClubSlug == "" {
			return domain.ParticipantSet{}, fmt.Errorf("tournament %s: no leaderboard and no club to fall back to", t.ID)
		}

		s.logger.Info().
			Str("tournament_id", t.ID).
			Str("club_slug", t.ClubSlug).
			Int("player_count", t.PlayerCount).
			Msg("leaderboard unavailable, falling back to club roster")

		members, err := s.client.GetClubMembers(ctx, t.ClubSlug)
		if err != nil {
			return domain.ParticipantSet{}, fmt.Errorf("roster fallback for tournament %s: %w", t.ID, err)
		}

		set := domain.NewParticipantSet(domain.SourceRosterFallback)
		for _, m := range members {
			set.Add(m.Username)
		}
		return set, nil

	default:
		return domain.ParticipantSet{}, err
	}
}
