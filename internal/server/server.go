package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cmellojr/chessclub/internal/api"
	"github.com/cmellojr/chessclub/internal/cache"
	"github.com/cmellojr/chessclub/internal/service"

	"github.com/rs/zerolog"
)

// Server exposes the club data pipeline and the cache administration
// operations as a JSON HTTP API.
type Server struct {
	clubs       *service.ClubService
	tournaments *service.TournamentService
	games       *service.GameService
	store       *cache.Store
	logger      zerolog.Logger
}

func New(clubs *service.ClubService, tournaments *service.TournamentService, games *service.GameService, store *cache.Store, logger zerolog.Logger) *Server {
	return &Server{
		clubs:       clubs,
		tournaments: tournaments,
		games:       games,
		store:       store,
		logger:      logger,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clubs/{slug}", s.handleGetClub)
	mux.HandleFunc("GET /api/clubs/{slug}/members", s.handleGetMembers)
	mux.HandleFunc("GET /api/clubs/{slug}/tournaments", s.handleGetTournaments)
	mux.HandleFunc("GET /api/clubs/{slug}/games", s.handleGetGames)
	mux.HandleFunc("GET /api/players/{username}", s.handleGetPlayer)
	mux.HandleFunc("GET /api/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/cache/purge", s.handleCachePurge)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)
	return mux
}

func (s *Server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	club, err := s.clubs.GetClub(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, club)
}

func (s *Server) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	withDetails := r.URL.Query().Get("details") == "true"
	members, err := s.clubs.GetMembers(r.Context(), r.PathValue("slug"), withDetails)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleGetTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := s.tournaments.List(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tournaments)
}

func (s *Server) handleGetGames(w http.ResponseWriter, r *http.Request) {
	var opts service.CollectOptions

	query := r.URL.Query()
	if raw := query.Get("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid 'last' parameter", http.StatusBadRequest)
			return
		}
		opts.LastN = n
	}
	if raw := query.Get("min_accuracy"); raw != "" {
		floor, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid 'min_accuracy' parameter", http.StatusBadRequest)
			return
		}
		opts.MinAccuracy = &floor
	}

	games, err := s.games.GamesForClub(r.Context(), r.PathValue("slug"), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	profile, err := s.clubs.GetPlayer(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCachePurge(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.PurgeExpired()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Clear()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps the error taxonomy onto HTTP statuses without
// flattening the message the caller needs to diagnose the failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, api.ErrAuthRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, api.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, api.ErrRateLimited):
		status = http.StatusServiceUnavailable
	default:
		var platformErr *api.PlatformError
		if errors.As(err, &platformErr) {
			status = http.StatusBadGateway
		}
	}

	s.logger.Error().Err(err).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
