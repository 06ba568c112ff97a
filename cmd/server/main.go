package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"citytycoon-backend/internal/action"
	"citytycoon-backend/internal/attack"
	"citytycoon-backend/internal/auth"
	"citytycoon-backend/internal/authz"
	"citytycoon-backend/internal/config"
	"citytycoon-backend/internal/dirty"
	"citytycoon-backend/internal/email"
	"citytycoon-backend/internal/hero"
	"citytycoon-backend/internal/logger"
	"citytycoon-backend/internal/mapsvc"
	"citytycoon-backend/internal/model"
	"citytycoon-backend/internal/moderation"
	"citytycoon-backend/internal/ratelimit"
	"citytycoon-backend/internal/router"
	"citytycoon-backend/internal/social"
	"citytycoon-backend/internal/store/postgres"
	"citytycoon-backend/internal/tick"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	if err := store.Migrate("file://migrations"); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	tenants := postgres.NewTenantRepository(store)
	users := postgres.NewUserRepository(store)
	sessions := postgres.NewSessionRepository(store)
	gameMaps := postgres.NewMapRepository(store)
	buildings := postgres.NewBuildingRepository(store)
	security := postgres.NewSecurityRepository(store)
	companies := postgres.NewGameCompanyRepository(store)
	attacks := postgres.NewAttackRepository(store)
	market := postgres.NewMarketRepository(store)
	txns := postgres.NewTransactionRecordRepository(store)
	auditLog := postgres.NewAuditLogRepository(store)
	authzRepo := postgres.NewAuthzRepository(store)
	stats := postgres.NewStatisticsRepository(store)
	donations := postgres.NewDonationRepository(store)
	chat := postgres.NewChatRepository(store)
	heroMessages := postgres.NewHeroMessageRepository(store)
	casino := postgres.NewCasinoRepository(store)
	ticks := postgres.NewTickRepository(store)

	tracker := dirty.New(buildings)

	var mailer email.Sender = &email.LoggingSender{Timeout: cfg.EmailTimeout}

	gate := moderation.NewHTTPGate(cfg.ModerationEndpoint, cfg.ModerationTimeout)

	var authBucket, authenticatedBucket, anonymousBucket ratelimit.Limiter
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("parse REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(redisOpts)
		authBucket = ratelimit.NewRedisLimiter(redisClient, cfg.AuthRateLimitPerMinute, time.Minute, "ratelimit:auth")
		authenticatedBucket = ratelimit.NewRedisLimiter(redisClient, cfg.AuthenticatedRateLimitPerMinute, time.Minute, "ratelimit:authed")
		anonymousBucket = ratelimit.NewRedisLimiter(redisClient, cfg.AnonymousRateLimitPerMinute, time.Minute, "ratelimit:anon")
		log.Info("rate limiting backed by redis", zap.String("redis_url", cfg.RedisURL))
	} else {
		authBucket = ratelimit.NewKeyedLimiter(cfg.AuthRateLimitPerMinute, time.Minute)
		authenticatedBucket = ratelimit.NewKeyedLimiter(cfg.AuthenticatedRateLimitPerMinute, time.Minute)
		anonymousBucket = ratelimit.NewKeyedLimiter(cfg.AnonymousRateLimitPerMinute, time.Minute)
	}
	authLimiter := ratelimit.FailOpen{Inner: authBucket}
	authenticatedLimiter := ratelimit.FailOpen{Inner: authenticatedBucket}
	anonymousLimiter := ratelimit.FailOpen{Inner: anonymousBucket}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	authSvc := auth.NewService(users, sessions, tokens, mailer, authLimiter, cfg.MagicLinkTTL, cfg.InvitationTTL)
	authzSvc := authz.NewService(authzRepo)

	heroSvc := hero.NewService(companies, gameMaps, buildings, stats, txns, gate)
	actionSvc := action.NewService(companies, gameMaps, buildings, security, market, txns, tracker, heroSvc,
		model.DefaultCatalog(), model.DefaultSecurityCatalog())
	attackSvc := attack.NewService(companies, buildings, security, attacks, txns, tracker, gate, model.DefaultTrickCatalog())
	mapSvc := mapsvc.NewService(gameMaps)

	hub := social.NewHub()
	go hub.Run(context.Background())

	chatSvc := social.NewChatService(chat, gate, hub)
	heroMsgSvc := social.NewHeroMessageService(heroMessages, gate, hub)
	templeSvc := social.NewTempleService(companies, donations, txns, hub)
	casinoSvc := social.NewCasinoService(companies, casino, txns)
	socialHandler := social.NewHandler(hub, chatSvc)

	processor := tick.NewProcessor(gameMaps, buildings, companies, security, stats, ticks, heroSvc, model.DefaultCatalog(), cfg.TickInterval)
	scheduler := tick.NewScheduler()
	if err := scheduler.Start(cfg.TickCadence, processor); err != nil {
		log.Fatal("start tick scheduler", zap.Error(err))
	}

	deps := &router.Deps{
		Config: cfg,

		Auth:   authSvc,
		Tokens: tokens,
		Authz:  authzSvc,
		Action: actionSvc,
		Attack: attackSvc,
		Hero:   heroSvc,
		Maps:   mapSvc,

		Chat:         chatSvc,
		HeroMessages: heroMsgSvc,
		Temple:       templeSvc,
		Casino:       casinoSvc,
		SocialWS:     socialHandler,

		Users:     users,
		Tenants:   tenants,
		Companies: companies,
		GameMaps:  gameMaps,
		Buildings: buildings,
		Market:    market,
		Txns:      txns,
		AuditLog:  auditLog,

		AuthLimiter:          authLimiter,
		AuthenticatedLimiter: authenticatedLimiter,
		AnonymousLimiter:     anonymousLimiter,
	}

	engine := router.New(deps)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
