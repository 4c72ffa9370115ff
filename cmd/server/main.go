package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/api"
	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/cache"
	"github.com/yourname/fitcoach/internal/calendar"
	"github.com/yourname/fitcoach/internal/config"
	"github.com/yourname/fitcoach/internal/metrics"
	"github.com/yourname/fitcoach/internal/planner"
	"github.com/yourname/fitcoach/internal/service"
	"github.com/yourname/fitcoach/internal/storage"
)

type application struct {
	cfg      *config.Config
	logger   internal.Logger
	store    storage.Store
	auth     auth.Provider
	ledger   *service.Ledger
	plans    *service.Plans
	coach    *service.Coach
	calendar *calendar.Service
}

func (a *application) Logger() internal.Logger     { return a.logger }
func (a *application) Config() *config.Config      { return a.cfg }
func (a *application) Store() storage.Store        { return a.store }
func (a *application) Auth() auth.Provider         { return a.auth }
func (a *application) Ledger() *service.Ledger     { return a.ledger }
func (a *application) Plans() *service.Plans       { return a.plans }
func (a *application) Coach() *service.Coach       { return a.coach }
func (a *application) Calendar() *calendar.Service { return a.calendar }

var _ api.App = (*application)(nil)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	var completionCache service.CompletionCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			logger.Fatalf("failed to init redis cache: %v", err)
		}
		defer redisCache.Close()
		completionCache = redisCache
		logger.Infof("completion cache: redis at %s", cfg.RedisAddr)
	} else {
		completionCache = cache.NewNop()
		logger.Info("completion cache: disabled (no REDIS_ADDR)")
	}

	generator, err := planner.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Fatalf("failed to init plan generator: %v", err)
	}
	defer generator.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Validate() rejects this in production.
		jwtSecret = "dev-only-insecure-secret"
		logger.Warn("JWT_SECRET not set, using insecure development secret")
	}

	ledger := service.NewLedger(store, completionCache, logger)
	app := &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		auth:     auth.NewJWTProvider(jwtSecret, time.Duration(cfg.TokenTTL)*time.Minute, store),
		ledger:   ledger,
		plans:    service.NewPlans(store, generator, ledger, completionCache, logger),
		coach:    service.NewCoach(store, generator, logger),
		calendar: calendar.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, store, logger),
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("server listening on :%s env=%s backend=%s", cfg.Port, cfg.Env, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
