package service

import (
	"context"
	"fmt"

	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/constants"
	"github.com/cmellojr/chessclub/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ClubService struct {
	client *api.Client
	logger zerolog.Logger
}

func NewClubService(client *api.Client, logger zerolog.Logger) *ClubService {
	return &ClubService{client: client, logger: logger}
}

func (s *ClubService) GetClub(ctx context.Context, slug string) (*domain.Club, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	s.logger.Info().Str("slug", slug).Msg("getting club")
	return s.client.GetClub(ctx, slug)
}

// GetMembers returns the flattened club roster. With withDetails set,
// each member's profile is loaded to fill in the title; profile lookups
// that fail are skipped rather than failing the roster.
func (s *ClubService) GetMembers(ctx context.Context, slug string, withDetails bool) ([]domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("slug", slug).Bool("with_details", withDetails).Msg("getting club members")

	members, err := s.client.GetClubMembers(ctx, slug)
	if err != nil {
		return nil, err
	}

	if withDetails {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(constants.MemberDetailWorkers)

		for i := range members {
			g.Go(func() error {
				profile, err := s.client.GetPlayer(gCtx, members[i].Username)
				if err != nil {
					s.logger.Debug().Err(err).Str("username", members[i].Username).Msg("skipping member profile")
					return nil
				}
				members[i].Title = profile.Title
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("loading member details for club %s: %w", slug, err)
		}
	}

	s.logger.Info().Str("slug", slug).Int("count", len(members)).Msg("members fetched")
	return members, nil
}

func (s *ClubService) GetPlayer(ctx context.Context, username string) (*domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	s.logger.Info().Str("username", username).Msg("getting player profile")
	return s.client.GetPlayer(ctx, username)
}
