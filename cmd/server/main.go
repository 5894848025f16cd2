package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/common/clock"
	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/common/uuid"
	"github.com/KirkDiggler/codered/internal/config"
	"github.com/KirkDiggler/codered/internal/handlers/discord"
	"github.com/KirkDiggler/codered/internal/handlers/ws"
	"github.com/KirkDiggler/codered/internal/random"
	"github.com/KirkDiggler/codered/internal/repositories/match"
	"github.com/KirkDiggler/codered/internal/repositories/room"
	"github.com/KirkDiggler/codered/internal/samples"
	"github.com/KirkDiggler/codered/internal/server"
	gameService "github.com/KirkDiggler/codered/internal/services/game"
	"github.com/KirkDiggler/codered/internal/services/messaging"
	"github.com/KirkDiggler/codered/internal/services/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	clk := &clock.DefaultClock{}
	rng := random.New(&random.Config{})
	uuidGen := uuid.New()

	// Initialize repositories
	roomRepo, err := room.NewMemory(&room.Config{Generator: roomcode.New()})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create room repository")
	}

	var matchRepo match.Repository
	if cfg.ArchiveEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		repo, err := match.NewRedis(&match.Config{RedisClient: redisClient, TTL: cfg.MatchTTL})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to create match repository")
		}
		matchRepo = repo
		log.Info().Str("addr", cfg.RedisAddr).Msg("Match archive enabled")
	}

	// Initialize services
	documents, err := relay.New(&relay.Config{Clock: clk, GracePeriod: cfg.DocGracePeriod})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document relay")
	}

	messagingSvc, err := messaging.New(&messaging.Config{Random: rng})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create messaging service")
	}

	hub := ws.NewHub()

	gameCfg := &gameService.Config{
		TotalRounds:       cfg.TotalRounds,
		RoundDuration:     cfg.RoundDuration,
		VoteDuration:      cfg.VoteDuration,
		RoundIntermission: cfg.RoundIntermission,
		FixRevealDelay:    cfg.FixRevealDelay,
		RoomRepo:          roomRepo,
		MatchRepo:         matchRepo,
		Documents:         documents,
		Publisher:         hub,
		Messaging:         messagingSvc,
		Catalog:           samples.Default(),
		Random:            rng,
		Clock:             clk,
		UUIDGenerator:     uuidGen,
	}
	if cfg.AnnounceEnabled() {
		announcer, err := discord.New(&discord.Config{
			WebhookID: cfg.DiscordWebhookID,
			Token:     cfg.DiscordWebhookToken,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Discord announcer")
		}
		gameCfg.Announcer = announcer
		log.Info().Msg("Discord announcements enabled")
	}

	gameSvc, err := gameService.New(gameCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game service")
	}

	// Initialize handlers
	gameSocket, err := ws.NewHandler(&ws.Config{
		GameService:    gameSvc,
		Hub:            hub,
		UUIDGenerator:  uuidGen,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game socket handler")
	}

	docSocket, err := ws.NewDocHandler(&ws.DocConfig{
		GameService:    gameSvc,
		Documents:      documents,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document socket handler")
	}

	srv, err := server.New(&server.Config{
		GameService: gameSvc,
		GameSocket:  gameSocket,
		DocSocket:   docSocket,
		MatchRepo:   matchRepo,
		PublicURL:   cfg.PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting CodeRed server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server exited")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error stopping server")
	}

	log.Info().Msg("Server has been shut down")
}
