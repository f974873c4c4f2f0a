package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bankcore/account-service/internal/api"
	"github.com/bankcore/account-service/internal/core/service"
	"github.com/bankcore/account-service/internal/infrastructure/auth"
	"github.com/bankcore/account-service/internal/infrastructure/config"
	mongodb "github.com/bankcore/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/bankcore/account-service/internal/infrastructure/db/redis"
	"github.com/bankcore/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Stores ---
	accountRepo := mongodb.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account index creation failed")
	}

	roleRepo := mongodb.NewRoleRepository(db)
	if err := roleRepo.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("role seeding failed")
	}

	// --- Core wiring ---
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.LockWindow)
	sessions := auth.NewSessionAuthority(accountRepo, hasher, throttle, cfg.JWTSecret, cfg.TokenTTL, log)
	accounts := service.NewAccountService(accountRepo, roleRepo, sessions, hasher, log)

	e := api.NewRouter(accounts, db, rdb, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting account service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
