package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/models"
	matchRepo "github.com/KirkDiggler/codered/internal/repositories/match"
	"github.com/KirkDiggler/codered/internal/services/game"
)

const (
	qrSize       = 320
	matchHistory = 10
)

// Config holds configuration for the HTTP server
type Config struct {
	GameService game.Service

	// GameSocket serves /ws and DocSocket serves /doc/{code}
	GameSocket http.Handler
	DocSocket  http.Handler

	// MatchRepo backs /rooms/{code}/matches; optional
	MatchRepo matchRepo.Repository

	// PublicURL is encoded into join QR codes; derived from the request when empty
	PublicURL string
}

// Server routes HTTP and websocket traffic
type Server struct {
	r         *chi.Mux
	game      game.Service
	matches   matchRepo.Repository
	publicURL string
}

// New constructs a Server and registers routes
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.GameSocket == nil || cfg.DocSocket == nil {
		return nil, ErrNilHandler
	}

	s := &Server{
		r:         chi.NewRouter(),
		game:      cfg.GameService,
		matches:   cfg.MatchRepo,
		publicURL: cfg.PublicURL,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// sockets are long lived so they skip the request timeout
	s.r.Handle("/ws", cfg.GameSocket)
	s.r.Handle("/doc/{code}", cfg.DocSocket)

	s.r.Route("/rooms/{code}", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(requestLogger)
		r.Get("/", s.handleRoomSummary)
		r.Get("/qr.png", s.handleQRCode)
		r.Get("/matches", s.handleMatches)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return s, nil
}

// Router exposes the router for http.Server and tests
func (s *Server) Router() http.Handler {
	return s.r
}

func (s *Server) handleRoomSummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.GetRoomSummary(r.Context(), &game.GetRoomSummaryInput{RoomCode: chi.URLParam(r, "code")})
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) || errors.Is(err, game.ErrInvalidRoomCode) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error().Err(err).Str("room", chi.URLParam(r, "code")).Msg("Failed to summarize room")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// handleQRCode renders a join link for the room. The room need not exist yet
// so a host can print the code before anyone connects.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	code := roomcode.Normalize(chi.URLParam(r, "code"))
	if !roomcode.Valid(code) {
		writeError(w, http.StatusNotFound, game.ErrInvalidRoomCode.Error())
		return
	}

	png, err := qrcode.Encode(s.joinURL(r, code), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("Failed to encode QR code")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(png)
}

func (s *Server) joinURL(r *http.Request, code string) string {
	base := s.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?room=" + code
}

type matchPlayerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Disabled bool   `json:"disabled"`
}

type matchResponse struct {
	ID           string                 `json:"id"`
	Winner       models.Faction         `json:"winner,omitempty"`
	Reason       string                 `json:"reason"`
	RoundsPlayed int                    `json:"roundsPlayed"`
	Players      []*matchPlayerResponse `json:"players"`
	EndedAt      time.Time              `json:"endedAt"`
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		writeError(w, http.StatusNotFound, "match history is disabled")
		return
	}

	code := roomcode.Normalize(chi.URLParam(r, "code"))
	if !roomcode.Valid(code) {
		writeError(w, http.StatusNotFound, game.ErrInvalidRoomCode.Error())
		return
	}

	out, err := s.matches.ListRoomMatches(r.Context(), &matchRepo.ListRoomMatchesInput{RoomCode: code, Limit: matchHistory})
	if err != nil {
		log.Error().Err(err).Str("room", code).Msg("Failed to list matches")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]*matchResponse, 0, len(out.Matches))
	for _, m := range out.Matches {
		mr := &matchResponse{
			ID:           m.ID,
			Winner:       m.Winner,
			Reason:       m.Reason,
			RoundsPlayed: m.RoundsPlayed,
			EndedAt:      m.EndedAt,
			Players:      make([]*matchPlayerResponse, 0, len(m.Players)),
		}
		for _, p := range m.Players {
			mr.Players = append(mr.Players, &matchPlayerResponse{ID: p.ID, Name: p.Name, Score: p.Score, Disabled: p.Disabled})
		}
		resp = append(resp, mr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
