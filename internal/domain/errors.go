package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch signals vectors of different dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrCorpusLoad signals an unreadable or malformed corpus source.
	ErrCorpusLoad = errors.New("corpus load failed")
	// ErrInvalidRequest signals missing or malformed request input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoContext signals that retrieval produced no passages and the caller requires some.
	ErrNoContext = errors.New("no relevant manual context found")

	// ErrInvalidCredentials signals a refused login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountRejected signals that the account backend refused service for a user.
	ErrAccountRejected = errors.New("account rejected")
	// ErrAccountBackend signals an account backend failure.
	ErrAccountBackend = errors.New("account backend error")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrTokenQuotaExceeded signals an exhausted provider token budget.
	ErrTokenQuotaExceeded = errors.New("token quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals an answer-generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)

// DimensionMismatchError wraps ErrDimensionMismatch with the offending lengths.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}

// AccountRejectedError wraps ErrAccountRejected with the backend's reason.
type AccountRejectedError struct {
	Message string
}

func (e *AccountRejectedError) Error() string {
	if e.Message == "" {
		return ErrAccountRejected.Error()
	}
	return ErrAccountRejected.Error() + ": " + e.Message
}

func (e *AccountRejectedError) Unwrap() error { return ErrAccountRejected }

// NewAccountRejected creates an account rejection error.
func NewAccountRejected(message string) error {
	return &AccountRejectedError{Message: message}
}
