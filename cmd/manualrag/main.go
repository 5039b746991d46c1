package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/config"
	"github.com/kailas-cloud/manualrag/internal/db"
	dbRedis "github.com/kailas-cloud/manualrag/internal/db/redis"
	"github.com/kailas-cloud/manualrag/internal/domain"
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	logpkg "github.com/kailas-cloud/manualrag/internal/logger"
	"github.com/kailas-cloud/manualrag/internal/metrics"
	budgetrepo "github.com/kailas-cloud/manualrag/internal/repository/budget"
	"github.com/kailas-cloud/manualrag/internal/repository/embcache"
	accountTransport "github.com/kailas-cloud/manualrag/internal/transport/account"
	chiTransport "github.com/kailas-cloud/manualrag/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/manualrag/internal/transport/openai"
	chatuc "github.com/kailas-cloud/manualrag/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/manualrag/internal/usecase/health"
	provideruc "github.com/kailas-cloud/manualrag/internal/usecase/provider"
	"github.com/kailas-cloud/manualrag/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/manualrag/internal/usecase/usage"
	"github.com/kailas-cloud/manualrag/internal/version"
)

func main() {
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

	logger.Info("Starting manualrag API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	metrics.RegisterProviderMetrics()
	metrics.RegisterRetrievalMetrics()

	// The corpus is read exactly once; every request shares this store.
	store, err := corpus.LoadFile(cfg.Corpus.Path)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	if cfg.Embedding.Dimensions > 0 && store.Size() > 0 && store.Dimensions() != cfg.Embedding.Dimensions {
		logger.Fatal("Corpus dimensions do not match embedding model",
			zap.Int("corpus_dimensions", store.Dimensions()),
			zap.Int("embedding_dimensions", cfg.Embedding.Dimensions),
		)
	}
	metrics.CorpusDocuments.Set(float64(store.Size()))
	metrics.CorpusDimensions.Set(float64(store.Dimensions()))
	logger.Info("Corpus loaded",
		zap.Int("documents", store.Size()),
		zap.Int("dimensions", store.Dimensions()),
	)

	ctx := context.Background()

	var kv db.Store
	if cfg.Cache.Enabled {
		kv, err = openCache(ctx, cfg.Cache)
		if err != nil {
			logger.Fatal("Cache not available", zap.Error(err))
		}
		defer kv.Close()
		logger.Info("Connected to cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)
	}

	// Single BudgetTracker shared by the embedder, the generator and the usage service.
	var budget *provideruc.BudgetTracker
	if cfg.Budget.DailyTokenLimit > 0 || cfg.Budget.MonthlyTokenLimit > 0 {
		action, err := provideruc.ParseBudgetAction(cfg.Budget.Action)
		if err != nil {
			logger.Fatal("Invalid budget action", zap.Error(err))
		}
		budget = provideruc.NewBudgetTracker(
			cfg.Embedding.Provider, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
		)
		if kv != nil {
			budget.WithStore(ctx, budgetrepo.New(kv, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetChecker provideruc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	embedder, embedHealth := buildEmbedder(cfg, kv, budgetChecker, logger)
	generator := buildGenerator(cfg, budgetChecker, logger)
	logger.Info("Providers created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model),
	)

	accounts := accountTransport.New(&accountTransport.Config{
		URL:     cfg.Account.URL,
		Secret:  cfg.Account.Secret,
		Timeout: time.Duration(cfg.Account.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	pipeline := retrieval.NewPipeline(retrieval.NewAssembler(cfg.Retrieval.SourceLabel))
	chatSvc := chatuc.New(store, pipeline, embedder, generator, accounts, logger).
		WithTopK(cfg.Retrieval.TopK).
		WithSystemPrompt(cfg.Generation.SystemPrompt).
		WithRequireContext(cfg.Retrieval.RequireContext)

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	healthSvc := healthuc.New(store).
		WithChecker("embedding", embedHealth).
		WithChecker("account", accounts)
	if kv != nil {
		healthSvc.WithCache(kv)
	}

	var limiter *chiTransport.UserLimiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = chiTransport.NewUserLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	server := chiTransport.NewServer(chatSvc, usageSvc, healthSvc, limiter, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// openCache connects to Redis or Valkey (same wire protocol, same client) and
// waits for it to answer.
func openCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Addrs,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Standalone: cfg.Standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// embeddingHealthChecker adapts an embedder to health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The second return value checks the innermost provider.
func buildEmbedder(
	cfg config.Config,
	kv db.KVStore,
	budget provideruc.BudgetChecker,
	logger *zap.Logger,
) (domain.Embedder, *embeddingHealthChecker) {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil {
		embedder = embcache.New(
			base, kv, cfg.Embedding.Model,
			time.Duration(cfg.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	embedder = provideruc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, budget, logger,
	)

	// Instruction prefix is outermost so the cache key includes it.
	if cfg.Embedding.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.QueryInstruction)
	}

	return embedder, &embeddingHealthChecker{embedder: base}
}

// buildGenerator assembles OpenAI -> Instrumented.
func buildGenerator(
	cfg config.Config,
	budget provideruc.BudgetChecker,
	logger *zap.Logger,
) domain.Generator {
	base := openaiTransport.NewGenerator(&openaiTransport.Config{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Provider:    cfg.Embedding.Provider,
		Temperature: float32(*cfg.Generation.Temperature),
		MaxTokens:   cfg.Generation.MaxTokens,
		Logger:      logger,
	})
	return provideruc.NewInstrumentedGenerator(
		base, cfg.Embedding.Provider, cfg.Generation.Model, budget, logger,
	)
}
