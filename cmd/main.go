package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"fridgepos/internal/config"
	"fridgepos/internal/jobs"
	"fridgepos/internal/persistence"
	"fridgepos/internal/services"
	"fridgepos/internal/store"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	log.Info().Str("version", version).Msg("starting fridgepos ledger engine")

	kv := persistence.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)

	st := store.New(kv, log)
	if err := st.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed store from persistence")
	}
	st.Subscribe(func(collection string) {
		log.Debug().Str("collection", collection).Msg("collection changed")
	})

	proofSvc, err := services.NewMinioProofService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Warn().Err(err).Msg("proof-of-payment storage unavailable, continuing without it")
	}

	// The presentation layer receives the engine by injection and calls it
	// in-process; nothing here owns a network protocol.
	engine := services.NewEngine(st, proofSvc)

	lowStock := jobs.NewLowStockService(st, engine.Notifications, log)
	scheduler, err := jobs.NewJobScheduler(st, lowStock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
