package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/lokercirebon/jobportal/config"
	"github.com/lokercirebon/jobportal/internal/api/handlers"
	"github.com/lokercirebon/jobportal/internal/api/middleware"
	"github.com/lokercirebon/jobportal/internal/api/routes"
	"github.com/lokercirebon/jobportal/internal/bootstrap"
	"github.com/lokercirebon/jobportal/internal/cache"
	"github.com/lokercirebon/jobportal/internal/logger"
	"github.com/lokercirebon/jobportal/internal/providers/llm"
	"github.com/lokercirebon/jobportal/internal/security"
	"github.com/lokercirebon/jobportal/internal/services"
	"github.com/lokercirebon/jobportal/internal/workers"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config error")
	}
	logger.SetLevel(log, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init error")
	}
	defer stores.Close(context.Background())

	tokens, err := security.NewTokenIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("token issuer error")
	}

	notifications := stores.Notifications(log)
	var notifier services.Notifier = notifications
	if stores.Redis != nil {
		pool := &workers.NotificationWorkerPool{Redis: stores.Redis, Deliver: notifications, Logger: log}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Warn("notification workers not started")
		} else {
			notifier = &workers.NotificationQueue{Redis: stores.Redis, Inline: notifications, Logger: log, MaxSize: 10000}
		}
	}
	deps := stores.Deps(notifier, log)

	var (
		publicCache cache.Cache
		locker      cache.Locker
		limiter     middleware.Limiter = middleware.NewMemoryLimiter(cfg.Server.LoginPerMinute, time.Minute)
	)
	if stores.Redis != nil {
		rc := cache.NewRedisCache(stores.Redis)
		publicCache, locker = rc, rc
		limiter = middleware.NewRedisLimiter(stores.Redis, cfg.Server.LoginPerMinute, time.Minute)
	}

	scorer := newScorer(ctx, cfg.Match, log)

	authSvc := services.NewAuthService(deps, tokens)
	jobSvc := services.NewJobService(deps, publicCache)
	appSvc := services.NewApplicationService(deps, scorer)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(authSvc),
		Profile:      handlers.NewProfileHandler(authSvc, services.NewProfileService(deps)),
		Job:          handlers.NewJobHandler(authSvc, jobSvc),
		Application:  handlers.NewApplicationHandler(authSvc, appSvc),
		Interview:    handlers.NewInterviewHandler(authSvc, services.NewInterviewService(deps)),
		Contract:     handlers.NewContractHandler(authSvc, services.NewContractService(deps)),
		Resignation:  handlers.NewResignationHandler(authSvc, services.NewResignationService(deps)),
		Admin:        handlers.NewAdminHandler(authSvc, services.NewAdminService(deps)),
		Notification: handlers.NewNotificationHandler(authSvc, notifications),
		WS:           handlers.NewWSHandler(authSvc, notifications, originChecker(cfg.Server.CORSOrigins)),
		Sweep:        handlers.NewSweepHandler(services.NewSweepService(deps, locker), cfg.Sweep.Timeout.Std()),
		Tokens:       tokens,
		LoginLimiter: middleware.RateLimit(limiter, log),
		CronSecret:   cfg.Auth.CronSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           corsHandler(cfg.Server.CORSOrigins).Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		return cors.AllowAll()
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
	})
}

func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}

// newScorer prefers Vertex Gemini and keeps keyword overlap as the fallback.
func newScorer(ctx context.Context, cfg config.MatchConfig, log *logrus.Logger) llm.Scorer {
	if cfg.VertexProject == "" {
		return llm.KeywordScorer{}
	}
	gemini, err := llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel, cfg.CredentialsFile)
	if err != nil {
		log.WithError(err).Warn("vertex ai unavailable; using keyword matching")
		return llm.KeywordScorer{}
	}
	return llm.Fallback{
		Primary:   gemini,
		Secondary: llm.KeywordScorer{},
		OnError: func(err error) {
			log.WithError(err).Warn("vertex scoring failed; used keyword matching")
		},
	}
}
