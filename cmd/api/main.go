// @title           Identity Service API
// @version         1.0
// @description     Account registration, activation, login and credential lifecycle.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/99minutos/identity-service/docs"
	"github.com/99minutos/identity-service/internal/api"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
	mongodb "github.com/99minutos/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/identity-service/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-service/internal/infrastructure/notify"
	"github.com/99minutos/identity-service/internal/infrastructure/queue"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
	"github.com/99minutos/identity-service/internal/pkg/config"
	"github.com/99minutos/identity-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-service",
		Fields:  map[string]string{"env": cfg.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unavailable")
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	accounts := mongodb.NewAccountRepository(db)
	audits := mongodb.NewAuditRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account indexes")
	}
	if err := audits.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	// --- Delivery ---
	codes := security.NewCodeGenerator(cfg.Auth.OTPTTL, cfg.Auth.ResetCodeTTL, time.Now)
	composer := notify.Composer{
		ActivationTTL: codes.TTL(ports.PurposeActivation),
		ResetWindow:   codes.TTL(ports.PurposeReset),
	}
	provider, err := notify.New(ctx, notify.Options{
		Provider:  cfg.Notifier.Provider,
		From:      cfg.Notifier.From,
		AWSRegion: cfg.Notifier.AWSRegion,
		SMTP: notify.SMTPConfig{
			Host:     cfg.Notifier.SMTPHost,
			Port:     cfg.Notifier.SMTPPort,
			Username: cfg.Notifier.SMTPUser,
			Password: cfg.Notifier.SMTPPass,
		},
		Composer: composer,
	}, logger.Component("notify"))
	if err != nil {
		log.Fatal().Err(err).Msg("notifier")
	}
	notifier := notify.NewDedupNotifier(provider, redisdb.NewDeliveryDedup(rdb, cfg.Redis.DedupTTL), logger.Component("notify"))

	// --- Audit trail ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, audits, logger.Component("audit"))
	dispatcher.Start(workerCtx)

	// --- Core ---
	tokens := security.NewJWTIssuer(cfg.Auth.JWTSecret, time.Now)
	svc := service.NewIdentityService(service.Dependencies{
		Repo:         accounts,
		Hasher:       security.NewBcryptHasher(cfg.Auth.BcryptCost),
		Codes:        codes,
		Tokens:       tokens,
		Notifier:     notifier,
		Audit:        dispatcher,
		UserTokenTTL: cfg.Auth.UserTokenTTL,
		AppTokenTTL:  cfg.Auth.AppTokenTTL,
	}, logger.Component("identity"))

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Service: svc,
		Tokens:  tokens,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   redisdb.Ping(rdb),
		},
		RequestTimeout: cfg.RequestTimeout,
		Log:            logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("bye")
}
