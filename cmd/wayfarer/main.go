package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/config"
	"github.com/kailas-cloud/wayfarer/internal/db"
	dbRedis "github.com/kailas-cloud/wayfarer/internal/db/redis"
	"github.com/kailas-cloud/wayfarer/internal/domain"
	"github.com/kailas-cloud/wayfarer/internal/domain/prompt"
	logpkg "github.com/kailas-cloud/wayfarer/internal/logger"
	"github.com/kailas-cloud/wayfarer/internal/metrics"
	attractionrepo "github.com/kailas-cloud/wayfarer/internal/repository/attraction"
	budgetrepo "github.com/kailas-cloud/wayfarer/internal/repository/budget"
	"github.com/kailas-cloud/wayfarer/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/wayfarer/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/wayfarer/internal/transport/openai"
	askuc "github.com/kailas-cloud/wayfarer/internal/usecase/ask"
	budgetuc "github.com/kailas-cloud/wayfarer/internal/usecase/budget"
	chatuc "github.com/kailas-cloud/wayfarer/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/wayfarer/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/wayfarer/internal/usecase/health"
	retrievaluc "github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/wayfarer/internal/usecase/usage"
	"github.com/kailas-cloud/wayfarer/internal/version"
)

// providerName labels budget keys and provider metrics. Both upstreams sit
// behind the same OpenAI-compatible gateway.
const providerName = "openai"

func main() {
	// Load configuration based on ENV. Validation rejects missing upstream
	// credentials here, before any listener starts.
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

	logger.Info("Starting wayfarer API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("llm_model", cfg.LLM.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
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

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterChatMetrics()
	metrics.RegisterBudgetMetrics()

	// Single budget tracker shared by the embedding and completion providers
	// and the usage service.
	var budget *budgetuc.Tracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := budgetuc.ActionWarn
		if budgetCfg.Action == "reject" {
			action = budgetuc.ActionReject
		}
		budget = budgetuc.NewTracker(
			providerName, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store, loads current counters from DB.
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		budget.WithStore(ctx, budgetStore)
	}

	// Pass nil interfaces (not typed nil pointers!) if budget is not configured.
	// Go gotcha: (*Tracker)(nil) wrapped in BudgetChecker != nil.
	var embBudget embeddinguc.BudgetChecker
	var chatBudget chatuc.BudgetChecker
	if budget != nil {
		embBudget = budget
		chatBudget = budget
	}

	// Base providers keep their HealthCheck; the decorated chains do the work.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   providerName,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	queryEmbedder := buildEmbedder(baseEmbedder, cfg.Embedding, store, embBudget, logger)
	logger.Info("Embedder created",
		zap.String("provider", providerName),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	baseCompleter := openaiTransport.NewCompleter(&openaiTransport.ChatConfig{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		Timeout:      time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:       logger,
	})
	completer := chatuc.NewInstrumentedCompleter(baseCompleter, providerName, cfg.LLM.Model, chatBudget, logger)
	logger.Info("Completer created", zap.String("model", cfg.LLM.Model))

	// Repository and use case services
	attractions := attractionrepo.New(store, cfg.Embedding.Dimensions)
	retrievalSvc := retrievaluc.New(attractions)

	promptBuilder, err := newPromptBuilder(cfg.Retrieval.PromptTemplatePath)
	if err != nil {
		logger.Fatal("Failed to load prompt template", zap.Error(err))
	}

	askSvc := askuc.New(queryEmbedder, retrievalSvc, completer, promptBuilder, cfg.Retrieval.MaxTopN)

	// Usage service reads from the shared budget tracker.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader, budgetCfg.CostPerMillionTokens)

	// Health service probes the base providers directly
	healthSvc := healthuc.New(store, baseEmbedder, baseCompleter)

	server := chiTransport.NewServer(askSvc, healthSvc, usageSvc, cfg.Retrieval.DefaultTopN)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The instruction prefix sits outermost so the cache key includes it.
func buildEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, cfg.Model, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, providerName, cfg.Model, budget, logger)

	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}

	return embedder
}

// newPromptBuilder loads a custom prompt template when a path is configured.
func newPromptBuilder(path string) (*prompt.Builder, error) {
	if path == "" {
		return prompt.NewBuilder(""), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return prompt.NewBuilder(string(data)), nil
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
						"detail": "internal error",
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
