package manualrag

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusPath   string
	corpusReader io.Reader
	documents    []Document

	embedder    Embedder
	model       string
	sourceLabel string

	cacheDriver   string // "valkey" or "redis"
	cacheAddrs    []string
	cachePassword string
	standalone    bool
	cacheTTL      time.Duration

	dailyTokens   int64
	monthlyTokens int64
	rejectOverrun bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpusFile loads the corpus from a JSON file of document records.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
	})
}

// WithCorpusReader loads the corpus from a JSON stream of document records.
func WithCorpusReader(r io.Reader) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusReader = r
	})
}

// WithDocuments uses already-decoded documents as the corpus.
func WithDocuments(docs ...Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.documents = append(c.documents, docs...)
	})
}

// WithEmbedder sets the text embedding provider used by RetrieveText.
// model scopes cached embeddings; pass the provider's model name.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.model = model
	})
}

// WithSourceLabel changes the marker label ("Source" renders "[Source 1]").
func WithSourceLabel(label string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceLabel = label
	})
}

// WithValkeyCache caches question embeddings in a Valkey instance.
func WithValkeyCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithRedisCache caches question embeddings in a Redis instance.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances (not managed by cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithCacheTTL sets how long cached embeddings live. Default: 7 days.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithTokenBudget meters embedding tokens against daily and monthly limits
// (zero means unlimited). Over budget, calls are logged but allowed.
func WithTokenBudget(daily, monthly int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
	})
}

// WithStrictBudget makes an exhausted budget fail with ErrTokenQuotaExceeded.
func WithStrictBudget() Option {
	return optionFunc(func(c *clientConfig) {
		c.rejectOverrun = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
