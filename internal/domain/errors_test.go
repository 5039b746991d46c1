package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDimensionMismatchError_Unwrap(t *testing.T) {
	err := fmt.Errorf("rank: %w", NewDimensionMismatch(1536, 3))

	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	var dme *DimensionMismatchError
	if !errors.As(err, &dme) {
		t.Fatal("expected *DimensionMismatchError")
	}
	if dme.Want != 1536 || dme.Got != 3 {
		t.Errorf("unexpected lengths: want=%d got=%d", dme.Want, dme.Got)
	}
	if got := dme.Error(); got != "vector dimension mismatch: want 1536, got 3" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestAccountRejectedError(t *testing.T) {
	err := NewAccountRejected("usage limit reached")
	if !errors.Is(err, ErrAccountRejected) {
		t.Fatalf("expected ErrAccountRejected, got %v", err)
	}
	if err.Error() != "account rejected: usage limit reached" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if NewAccountRejected("").Error() != "account rejected" {
		t.Errorf("empty reason should render the sentinel only")
	}
}

func TestTokenUsage_Collects(t *testing.T) {
	ctx, u := NewContextWithUsage(t.Context())

	UsageFromContext(ctx).AddEmbeddingTokens(7)
	UsageFromContext(ctx).AddGenerationTokens(120)

	if !u.Used {
		t.Error("expected Used=true")
	}
	if u.Total() != 127 {
		t.Errorf("expected 127 tokens, got %d", u.Total())
	}
}

func TestTokenUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(t.Context())
	if u != nil {
		t.Fatal("expected nil collector on bare context")
	}
	u.AddEmbeddingTokens(3)
	u.AddGenerationTokens(3)
	if u.Total() != 0 {
		t.Errorf("nil collector should report 0, got %d", u.Total())
	}
}
