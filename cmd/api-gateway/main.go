package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/alumni-mentorship-api/api/swagger"
	"github.com/noah-isme/alumni-mentorship-api/internal/handler"
	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/repository"
	"github.com/noah-isme/alumni-mentorship-api/internal/service"
	"github.com/noah-isme/alumni-mentorship-api/pkg/cache"
	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
	"github.com/noah-isme/alumni-mentorship-api/pkg/database"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
	"github.com/noah-isme/alumni-mentorship-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/alumni-mentorship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/alumni-mentorship-api/pkg/middleware/requestid"
)

// @title Alumni Mentorship API
// @version 1.0.0
// @description Alumni verification and mentorship lifecycle service
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "alumni", logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Mentorship.CacheTTL, logr, redisClient != nil)

	runner := database.NewTxRunner(db,
		database.WithRetries(cfg.Database.TxRetries),
		database.WithBackoff(cfg.Database.TxRetryBackoff),
		database.WithRetryHook(metricsSvc.RecordTxRetry),
	)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		kafka, err := events.NewKafkaPublisher(cfg.Events)
		if err != nil {
			return fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafka
	}
	dispatcher := events.NewDispatcher(publisher, events.DispatcherConfig{
		Workers:        cfg.Events.Workers,
		MaxRetries:     cfg.Events.MaxRetries,
		RetryDelay:     cfg.Events.RetryDelay,
		PublishTimeout: cfg.Events.WriteTimeout,
		OnResult:       metricsSvc.RecordEvent,
		Logger:         logr,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	validate := validator.New()
	auditRepo := repository.NewAuditRepository(db)
	accountRepo := repository.NewAccountRepository(db, runner)
	registrationRepo := repository.NewRegistrationRepository(db, runner)
	verificationRepo := repository.NewVerificationRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	mentorshipRepo := repository.NewMentorshipRepository(db, runner)
	sessionRepo := repository.NewSessionRepository(db)

	scorer := service.NewVerificationScorer(service.NewScoreRules(cfg.Verification, nil), cfg.Verification.AutoApprovalThreshold)
	registrationSvc := service.NewRegistrationService(accountRepo, registrationRepo, verificationRepo, scorer, cfg.Roles, validate, logr,
		service.WithRegistrationAudit(auditRepo),
		service.WithRegistrationEvents(dispatcher),
		service.WithRegistrationMetrics(metricsSvc),
	)
	mentorshipSvc := service.NewMentorshipService(mentorshipRepo, validate, logr,
		service.WithMentorshipAudit(auditRepo),
		service.WithMentorshipEvents(dispatcher),
		service.WithMentorshipMetrics(metricsSvc),
		service.WithMentorshipCache(cacheSvc),
	)
	sessionSvc := service.NewSessionService(sessionRepo, mentorshipRepo, validate, logr,
		service.WithSessionAudit(auditRepo),
		service.WithSessionEvents(dispatcher),
	)
	mentorSvc := service.NewMentorService(mentorRepo, cacheSvc, cfg.Mentorship, validate, logr,
		service.WithMentorAudit(auditRepo),
		service.WithMentorEvents(dispatcher),
	)
	identitySvc := service.NewIdentityService(cfg.JWT)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Routes{
		Registrations: handler.NewRegistrationHandler(registrationSvc),
		Mentorships:   handler.NewMentorshipHandler(mentorshipSvc),
		Sessions:      handler.NewSessionHandler(sessionSvc),
		Mentors:       handler.NewMentorHandler(mentorSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, checks),
		Tokens:        identitySvc,
		AdminRole:     cfg.Roles.Admin,
		Audit:         auditRepo,
		Logger:        logr,
	}.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
