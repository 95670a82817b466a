package fx

import (
	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/auth"
	"github.com/cmellojr/chessclub/internal/cache"
	"github.com/cmellojr/chessclub/internal/config"
	"github.com/cmellojr/chessclub/internal/database"
	"github.com/cmellojr/chessclub/internal/logger"
	"github.com/cmellojr/chessclub/internal/server"
	"github.com/cmellojr/chessclub/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func provideFetcher(cfg *config.Config, creds auth.Provider, logger zerolog.Logger) *api.Fetcher {
	return api.NewFetcher(cfg, creds, logger)
}

func provideClient(fetch *api.CachedFetcher, logger zerolog.Logger) *api.Client {
	return api.NewClient(fetch, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(cache.NewStore),
	fx.Provide(fx.Annotate(auth.NewStaticProvider, fx.As(new(auth.Provider)))),
	// fetch pipeline
	fx.Provide(provideFetcher),
	fx.Provide(api.NewCachedFetcher),
	fx.Provide(provideClient),
	// svc
	fx.Provide(service.NewClubService),
	fx.Provide(service.NewTournamentService),
	fx.Provide(service.NewGameService),
	// server
	fx.Provide(server.New),
)
