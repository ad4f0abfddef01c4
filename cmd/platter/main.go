package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/entity"
	"github.com/ngjiaxun/platter/internal/application/invitation"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/config"
	"github.com/ngjiaxun/platter/internal/infrastructure/auth"
	platterhttp "github.com/ngjiaxun/platter/internal/infrastructure/http"
	"github.com/ngjiaxun/platter/internal/infrastructure/http/handlers"
	"github.com/ngjiaxun/platter/internal/infrastructure/http/middleware"
	"github.com/ngjiaxun/platter/internal/infrastructure/persistence/postgres"
	"github.com/ngjiaxun/platter/internal/infrastructure/queue"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	schema, err := cfg.Schema()
	if err != nil {
		log.Fatal().Err(err).Msg("hierarchy configuration invalid")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("database pool creation failed")
	}
	if err := pool.Ping(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("database unreachable")
	}
	cancel()
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis url invalid")
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	var enqueuer ports.TaskEnqueuer
	var worker *queue.Worker
	if redisClient != nil {
		redisOpt := asynq.RedisClientOpt{
			Addr:     redisClient.Options().Addr,
			Password: redisClient.Options().Password,
			DB:       redisClient.Options().DB,
		}
		asynqEnqueuer, err := queue.NewAsynqEnqueuer(redisOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("task enqueuer creation failed")
		}
		defer asynqEnqueuer.Close()
		enqueuer = asynqEnqueuer

		worker = queue.NewWorker(redisOpt, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Error().Err(err).Msg("task worker stopped")
			}
		}()
	} else {
		log.Warn().Msg("REDIS_URL not set, invitation emails will not be sent")
		enqueuer = queue.NewNoopEnqueuer()
	}

	entityRepo := postgres.NewEntityRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	invitationRepo := postgres.NewInvitationRepository(pool)
	txManager := postgres.NewTxManager(pool)

	accessManager := access.NewManager(schema, groupRepo)
	resolver := access.NewResolver(schema, entityRepo, groupRepo)

	createEntityUC := entity.NewCreateEntity(schema, entityRepo, accessManager, resolver, txManager)
	getEntityUC := entity.NewGetEntity(entityRepo, resolver)
	listEntitiesUC := entity.NewListEntities(entityRepo, resolver)
	updateEntityUC := entity.NewUpdateEntity(entityRepo, resolver)
	deleteEntityUC := entity.NewDeleteEntity(entityRepo, accessManager, resolver, txManager)

	createInvitationUC := invitation.NewCreateInvitation(schema, entityRepo, invitationRepo, resolver, enqueuer, log)
	acceptInvitationUC := invitation.NewAcceptInvitation(invitationRepo, entityRepo, accessManager, txManager)
	rejectInvitationUC := invitation.NewRejectInvitation(invitationRepo)
	cancelInvitationUC := invitation.NewCancelInvitation(invitationRepo)
	listInvitationsUC := invitation.NewListInvitations(invitationRepo)

	entitiesHandler := handlers.NewEntitiesHandler(schema, listEntitiesUC, createEntityUC, getEntityUC, updateEntityUC, deleteEntityUC, resolver, groupRepo)
	invitationsHandler := handlers.NewInvitationsHandler(createInvitationUC, acceptInvitationUC, rejectInvitationUC, cancelInvitationUC, listInvitationsUC)
	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	pemBytes, err := cfg.LoadJWTPublicKey()
	if err != nil {
		log.Fatal().Err(err).Msg("jwt public key load failed")
	}
	publicKey, err := auth.LoadRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt public key parse failed")
	}
	verifier := auth.NewTokenVerifier(publicKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	authValidator := middleware.NewAuthValidator(verifier)

	var ipRateLimit, userRateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.RatePerIP != "" {
		ipRateLimit, err = middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
		if err != nil {
			log.Fatal().Err(err).Msg("ip rate limit configuration invalid")
		}
	}
	if cfg.RateLimit.RatePerUser != "" {
		userRateLimit, err = middleware.NewUserRateLimiter(cfg.RateLimit.RatePerUser)
		if err != nil {
			log.Fatal().Err(err).Msg("user rate limit configuration invalid")
		}
	}

	router := platterhttp.NewRouter(platterhttp.RouterConfig{
		EntitiesHandler:    entitiesHandler,
		InvitationsHandler: invitationsHandler,
		HealthHandler:      healthHandler,
		RequireJWT:         authValidator.Handler,
		Log:                log,
		Secure:             middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		IPRateLimit:        ipRateLimit,
		UserRateLimit:      userRateLimit,
		Metrics:            true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if worker != nil {
		worker.Shutdown()
	}
	log.Info().Msg("stopped")
}
