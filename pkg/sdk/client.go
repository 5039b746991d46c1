package manualrag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/db"
	dbRedis "github.com/kailas-cloud/manualrag/internal/db/redis"
	"github.com/kailas-cloud/manualrag/internal/domain"
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
	"github.com/kailas-cloud/manualrag/internal/metrics"
	"github.com/kailas-cloud/manualrag/internal/repository/embcache"
	healthuc "github.com/kailas-cloud/manualrag/internal/usecase/health"
	provideruc "github.com/kailas-cloud/manualrag/internal/usecase/provider"
	"github.com/kailas-cloud/manualrag/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/manualrag/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 7 * 24 * time.Hour
)

// retriever is the internal interface for the retrieval pipeline.
type retriever interface {
	Retrieve(query []float32, store *corpus.Store, k int) (domret.Result, error)
}

// Client is the manualrag SDK entry point. It is safe for concurrent use.
type Client struct {
	store     *corpus.Store
	pipeline  retriever
	embedder  domain.Embedder // nil without WithEmbedder
	cache     db.Store        // nil without a cache option
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New loads the corpus and, when configured, connects the embedding cache.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{cacheTTL: defaultCacheTTL}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := loadCorpus(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var cache db.Store
	if len(cfg.cacheAddrs) > 0 {
		cache, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := cache.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			cache.Close()
			return nil, fmt.Errorf("manualrag: cache not ready: %w", err)
		}
	}

	return wireClient(store, cache, cfg, obs), nil
}

func loadCorpus(cfg *clientConfig) (*corpus.Store, error) {
	sources := 0
	for _, set := range []bool{cfg.corpusPath != "", cfg.corpusReader != nil, len(cfg.documents) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("manualrag: exactly one corpus source required " +
			"(use WithCorpusFile, WithCorpusReader or WithDocuments)")
	}

	switch {
	case cfg.corpusPath != "":
		s, err := corpus.LoadFile(cfg.corpusPath)
		if err != nil {
			return nil, fmt.Errorf("manualrag: %w", err)
		}
		return s, nil
	case cfg.corpusReader != nil:
		s, err := corpus.Load(cfg.corpusReader)
		if err != nil {
			return nil, fmt.Errorf("manualrag: %w", err)
		}
		return s, nil
	}

	docs := make([]corpus.Document, 0, len(cfg.documents))
	for i, d := range cfg.documents {
		doc, err := corpus.NewDocument(d.ID, d.Manual, d.Section, d.Text, d.Embedding)
		if err != nil {
			return nil, fmt.Errorf("manualrag: document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	s, err := corpus.New(docs)
	if err != nil {
		return nil, fmt.Errorf("manualrag: %w", err)
	}
	return s, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("manualrag: unknown cache driver %q", cfg.cacheDriver)
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.cacheAddrs,
		Password:   cfg.cachePassword,
		Standalone: cfg.standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("manualrag: create %s store: %w", cfg.cacheDriver, err)
	}
	return s, nil
}

func wireClient(store *corpus.Store, cache db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	var budget *provideruc.BudgetTracker
	if cfg.dailyTokens > 0 || cfg.monthlyTokens > 0 {
		action := provideruc.BudgetActionWarn
		if cfg.rejectOverrun {
			action = provideruc.BudgetActionReject
		}
		budget = provideruc.NewBudgetTracker("sdk", cfg.dailyTokens, cfg.monthlyTokens, action, logger)
	}

	var emb domain.Embedder
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
		if cache != nil {
			emb = embcache.New(emb, cache, cfg.model, cfg.cacheTTL, metrics.EmbeddingCacheTotal, logger)
		}
		// Pass nil interface (not typed nil pointer!) if budget is not configured.
		var checker provideruc.BudgetChecker
		if budget != nil {
			checker = budget
		}
		emb = provideruc.NewInstrumentedEmbedder(emb, "sdk", cfg.model, checker, logger)
	}

	healthSvc := healthuc.New(store)
	if cache != nil {
		healthSvc.WithCache(cache)
	}
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		healthSvc.WithChecker("embedding", hc)
	}

	var reader usageuc.BudgetReader
	if budget != nil {
		reader = budget
	}

	return &Client{
		store:     store,
		pipeline:  retrieval.NewPipeline(retrieval.NewAssembler(cfg.sourceLabel)),
		embedder:  emb,
		cache:     cache,
		healthSvc: healthSvc,
		usageSvc:  usageuc.New(reader),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// Ping checks cache connectivity. Without a cache it always succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.cache == nil {
		return nil
	}
	if err = c.cache.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Corpus describes the loaded corpus.
func (c *Client) Corpus() CorpusInfo {
	return CorpusInfo{Documents: c.store.Size(), Dimensions: c.store.Dimensions()}
}

// Retrieve ranks the corpus against query and assembles the top k passages.
// k <= 0 returns an empty result. A query whose length differs from the
// corpus dimensionality fails with ErrDimensionMismatch.
func (c *Client) Retrieve(_ context.Context, query []float32, k int) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err, "k", k, "passages", len(res.Passages)) }()

	r, err := c.pipeline.Retrieve(query, c.store, k)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	res = resultFromDomain(r)
	c.obs.passagesReturned(len(res.Passages))
	return res, nil
}

// RetrieveText embeds question with the configured embedder, then retrieves.
func (c *Client) RetrieveText(ctx context.Context, question string, k int) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve_text", start, err, "k", k, "passages", len(res.Passages)) }()

	if c.embedder == nil {
		return Result{}, errors.New("manualrag: embedder not configured (use WithEmbedder)")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRequest)
	}

	emb, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("vectorize question: %w", err)
	}

	r, err := c.pipeline.Retrieve(emb.Embedding, c.store, k)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	res = resultFromDomain(r)
	c.obs.passagesReturned(len(res.Passages))
	return res, nil
}

func resultFromDomain(r domret.Result) Result {
	res := Result{
		Context:   r.Context,
		Passages:  make([]Passage, len(r.Ranked)),
		Citations: make([]Citation, len(r.Citations)),
	}
	for i, sd := range r.Ranked {
		res.Passages[i] = Passage{
			Citation: Citation{ID: sd.Document.ID(), Manual: sd.Document.Manual(), Section: sd.Document.Section()},
			Text:     sd.Document.Text(),
			Score:    sd.Score,
		}
	}
	for i, ct := range r.Citations {
		res.Citations[i] = Citation(ct)
	}
	return res
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
