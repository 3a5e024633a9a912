package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/config"
	dbRedis "github.com/draftzero/draftzero/internal/db/redis"
	"github.com/draftzero/draftzero/internal/domain"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
	logpkg "github.com/draftzero/draftzero/internal/logger"
	"github.com/draftzero/draftzero/internal/metrics"
	budgetrepo "github.com/draftzero/draftzero/internal/repository/budget"
	documentrepo "github.com/draftzero/draftzero/internal/repository/document"
	"github.com/draftzero/draftzero/internal/repository/embcache"
	linkagerepo "github.com/draftzero/draftzero/internal/repository/linkage"
	permissionrepo "github.com/draftzero/draftzero/internal/repository/permission"
	sessionrepo "github.com/draftzero/draftzero/internal/repository/session"
	chiTransport "github.com/draftzero/draftzero/internal/transport/chi"
	openaiAI "github.com/draftzero/draftzero/internal/transport/openai"
	ailimituc "github.com/draftzero/draftzero/internal/usecase/ailimit"
	documentuc "github.com/draftzero/draftzero/internal/usecase/document"
	healthuc "github.com/draftzero/draftzero/internal/usecase/health"
	linkageuc "github.com/draftzero/draftzero/internal/usecase/linkage"
	sessionuc "github.com/draftzero/draftzero/internal/usecase/session"
	usageuc "github.com/draftzero/draftzero/internal/usecase/usage"
	"github.com/draftzero/draftzero/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting draftzero API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register AI metrics explicitly (no init())
	metrics.RegisterAIMetrics()

	// AI providers with a content-hash cache in front of the embedder
	baseEmbedder := openaiAI.NewEmbedder(&openaiAI.EmbedderConfig{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.EmbeddingModel,
		Dimensions: cfg.AI.EmbeddingDimensions,
		Provider:   cfg.AI.Provider,
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)

	explainer := openaiAI.NewExplainer(&openaiAI.ExplainerConfig{
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Model:    cfg.AI.ChatModel,
		Provider: cfg.AI.Provider,
		Logger:   logger,
	})
	logger.Info("AI providers created",
		zap.String("provider", cfg.AI.Provider),
		zap.String("embedding_model", cfg.AI.EmbeddingModel),
		zap.String("chat_model", cfg.AI.ChatModel),
	)

	// Per-user AI call budget shared by the linkage engine and the usage service.
	var limiter *ailimituc.Limiter
	if cfg.AI.Budget.DailyCallLimit > 0 || cfg.AI.Budget.MonthlyCallLimit > 0 {
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		limiter = ailimituc.New(budgetStore,
			cfg.AI.Budget.DailyCallLimit, cfg.AI.Budget.MonthlyCallLimit, logger)
	}

	// Pass nil interface (not typed nil pointer!) if the budget is not configured.
	// Go gotcha: (*Limiter)(nil) wrapped in Guard != nil.
	var guard linkageuc.Guard
	var budgetReader usageuc.BudgetReader
	if limiter != nil {
		guard = limiter
		budgetReader = limiter
	}

	// Repositories (domain-native, no adapters)
	docRepo := documentrepo.New(store)
	permRepo := permissionrepo.New(store)
	linkRepo := linkagerepo.New(store)
	sessRepo := sessionrepo.New(store)

	resolver := domperm.NewResolver(logger)

	// Use case services
	docSvc := documentuc.New(docRepo, permRepo, resolver, linkRepo, logger)
	linkSvc := linkageuc.New(linkRepo, embedder, explainer, guard, linkageuc.Config{
		ScoreExponent:  cfg.Linkage.ScoreExponent,
		ScoreThreshold: cfg.Linkage.ScoreThreshold,
		MaxParallel:    cfg.Linkage.MaxParallel,
		MaxNodes:       cfg.Linkage.MaxNodes,
	}, logger)
	sessSvc := sessionuc.New(sessRepo, logger)
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(store, baseEmbedder)

	server := chiTransport.NewServer(docSvc, linkSvc, sessSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.JWTAuthMiddleware(cfg.Auth.JWTSecret))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
