package manualrag

import "github.com/kailas-cloud/manualrag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrCorpusLoad             = domain.ErrCorpusLoad
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrTokenQuotaExceeded     = domain.ErrTokenQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
