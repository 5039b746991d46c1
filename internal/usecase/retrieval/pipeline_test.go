package retrieval

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/kailas-cloud/manualrag/internal/domain"
)

func TestRetrieve_EndToEnd(t *testing.T) {
	p := NewPipeline(nil)

	res, err := p.Retrieve([]float32{1, 0}, abcStore(t), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(res.Ranked); !equalStrings(got, []string{"A", "C"}) {
		t.Fatalf("expected [A C], got %v", got)
	}
	scores := res.Scores()
	if math.Abs(scores[0]-1) > 1e-6 || math.Abs(scores[1]-0.994) > 1e-3 {
		t.Errorf("unexpected scores %v", scores)
	}
	if len(res.Citations) != 2 || res.Citations[0].Manual != "A's manual" || res.Citations[1].Manual != "C's manual" {
		t.Errorf("unexpected citations %+v", res.Citations)
	}
	want := "[Source 1] (A's manual)\npassage A\n\n[Source 2] (C's manual)\npassage C"
	if res.Context != want {
		t.Errorf("unexpected context:\ngot:  %q\nwant: %q", res.Context, want)
	}
	if res.Empty() {
		t.Error("result should not be empty")
	}
}

func TestRetrieve_KZero(t *testing.T) {
	res, err := NewPipeline(nil).Retrieve([]float32{1, 0}, abcStore(t), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty() || res.Context != "" || len(res.Citations) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	_, err := NewPipeline(nil).Retrieve([]float32{1, 0, 0}, abcStore(t), 2)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRetrieve_Idempotent(t *testing.T) {
	p := NewPipeline(NewAssembler("Source"))
	store := abcStore(t)
	q := []float32{0.6, 0.4}

	first, err := p.Retrieve(q, store, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := p.Retrieve(q, store, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Context != first.Context {
			t.Fatalf("context differs between calls")
		}
		for i := range first.Citations {
			if again.Citations[i] != first.Citations[i] || again.Ranked[i].Score != first.Ranked[i].Score {
				t.Fatalf("rank %d differs between calls", i)
			}
		}
	}
}

func TestRetrieve_ConcurrentCallsShareCorpus(t *testing.T) {
	p := NewPipeline(nil)
	store := abcStore(t)
	want, err := p.Retrieve([]float32{1, 0}, store, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Retrieve([]float32{1, 0}, store, 3)
			if err != nil {
				errs <- err
				return
			}
			if got.Context != want.Context {
				errs <- errors.New("context mismatch under concurrency")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
