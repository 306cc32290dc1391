// @title        Dev Console API
// @version      1.0
// @description  Development-only operator surface: user directory search and sign-in token issuance.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/api"
	"github.com/bandq/devconsole/internal/api/handler"
	"github.com/bandq/devconsole/internal/core/ports"
	"github.com/bandq/devconsole/internal/core/service"
	mongodb "github.com/bandq/devconsole/internal/infrastructure/db/mongo"
	redisdb "github.com/bandq/devconsole/internal/infrastructure/db/redis"
	"github.com/bandq/devconsole/internal/infrastructure/identity"
	"github.com/bandq/devconsole/internal/infrastructure/queue"
	"github.com/bandq/devconsole/internal/pkg/config"
	"github.com/bandq/devconsole/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	policy := cfg.Policy()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !policy.Production(),
		Service: "devconsole",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !policy.Enabled() {
		log.Warn().Str("env", cfg.Env).Bool("dev_auth_enabled", cfg.DevAuth.Enabled).
			Msg("dev console is disabled; every /dev request will be rejected")
	}

	// --- Identity provider ---
	var provider ports.IdentityProvider
	if cfg.ProviderConfigured() {
		clerk, err := identity.NewClerkProvider(identity.Config{
			BaseURL:   cfg.Provider.APIURL,
			SecretKey: cfg.Provider.SecretKey,
			Timeout:   cfg.Provider.Timeout,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("identity provider setup failed")
		}
		provider = clerk
	} else {
		log.Warn().Msg("IDP_SECRET_KEY is not set; dev console requests will fail as misconfigured")
	}

	// --- Audit trail ---
	var (
		auditRepo ports.AuditRepository
		probes    []handler.Probe
	)
	switch cfg.Audit.Sink {
	case config.AuditSinkMongo:
		db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := mongodb.Disconnect(dctx, db); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("mongo index setup failed")
		}
		auditRepo = mongodb.NewAuditRepository(db)
		probes = append(probes, handler.MongoProbe(db))
	case config.AuditSinkRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rdb.Close()
		auditRepo = redisdb.NewAuditStream(rdb)
		probes = append(probes, handler.RedisProbe(rdb))
	}

	var audit ports.AuditSink
	if auditRepo != nil {
		dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, auditRepo, log)
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Close()
		audit = dispatcher
		log.Info().Str("sink", cfg.Audit.Sink).Int("workers", cfg.Audit.Workers).Msg("audit trail enabled")
	}

	// --- Services ---
	gate := service.NewGate(policy, cfg.Allowlist())
	e := api.NewRouter(api.Dependencies{
		Policy:        policy,
		Allowlist:     cfg.Allowlist(),
		JWTSecret:     cfg.JWTSecret,
		Impersonation: service.NewImpersonationService(gate, provider, audit, log),
		Directory:     service.NewDirectoryService(gate, provider, log),
		Readiness:     handler.NewHealthDependenciesHandler(provider != nil, probes...),
		Logger:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	shutdown(e.Shutdown, log)
}

func shutdown(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
