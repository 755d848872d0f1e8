package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NoahFrank/pollify/internal/auth"
	"github.com/NoahFrank/pollify/internal/config"
	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/realtime"
	"github.com/NoahFrank/pollify/internal/room"
	"github.com/NoahFrank/pollify/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("pg")
	}
	defer pool.Close()
	if err := owner.AutoMigrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("pg migrate")
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	sessions := session.NewManager(cfg.SessionSecret)
	owners := owner.NewRepository(pool)
	store := room.NewRedisStore(rdb)

	oauthCfg := auth.OAuthConfig(cfg)
	gateway := auth.NewGatewayFactory(oauthCfg, owners)

	roomSrv := room.NewServer(store, rdb, sessions, owners, gateway)
	authSrv := auth.NewHandler(oauthCfg, sessions, owners, store, gateway)

	hub := realtime.NewHub()
	go hub.Run()
	rtSrv := realtime.NewServer(hub, rdb)
	go rtSrv.RunRedisSubscriber(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Mount("/auth/spotify", authSrv.Router())
	r.Get("/ws", rtSrv.HandleWS)
	r.Mount("/", roomSrv.Router())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("pollify listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
