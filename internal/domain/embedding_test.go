package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	healthErr error
	got       string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(context.Context) error { return s.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(context.Context, string) (EmbeddingResult, error) {
	return EmbeddingResult{}, nil
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 9}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "how do I level the bed?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: how do I level the bed?" {
		t.Errorf("inner got %q", inner.got)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 9 {
		t.Errorf("result = %+v", result)
	}
}

func TestInstructionEmbedder_ErrorKeepsSentinel(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingProviderError}
	emb := NewInstructionEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstructionPassesThrough(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("inner got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	emb := NewInstructionEmbedder(&stubEmbedder{healthErr: down}, "q: ")
	if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}

	if err := NewInstructionEmbedder(plainEmbedder{}, "q: ").HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should pass, got %v", err)
	}
}
