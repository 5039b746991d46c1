package retrieval

import (
	"strings"
	"testing"

	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

func TestAssemble_Empty(t *testing.T) {
	text, citations := NewAssembler("").Assemble(nil)
	if text != "" {
		t.Errorf("expected empty context, got %q", text)
	}
	if citations == nil || len(citations) != 0 {
		t.Errorf("expected empty non-nil citations, got %v", citations)
	}
}

func TestAssemble_Format(t *testing.T) {
	store := newStore(t,
		docFixture{id: "a", manual: "X1 Quick Start", section: "Leveling", text: "Run auto leveling.", emb: []float32{1, 0}},
		docFixture{id: "b", manual: "P2 Guide", text: "Heat the nozzle.", emb: []float32{0, 1}},
	)
	ranked := []domret.ScoredDocument{
		{Document: store.At(1), Score: 0.9},
		{Document: store.At(0), Score: 0.4},
	}

	text, citations := NewAssembler("").Assemble(ranked)

	want := "[Source 1] (P2 Guide)\nHeat the nozzle.\n\n[Source 2] (X1 Quick Start)\nRun auto leveling."
	if text != want {
		t.Errorf("unexpected context:\ngot:  %q\nwant: %q", text, want)
	}
	wantCitations := []domret.Citation{
		{ID: "b", Manual: "P2 Guide", Section: ""},
		{ID: "a", Manual: "X1 Quick Start", Section: "Leveling"},
	}
	if len(citations) != len(wantCitations) {
		t.Fatalf("expected %d citations, got %d", len(wantCitations), len(citations))
	}
	for i := range wantCitations {
		if citations[i] != wantCitations[i] {
			t.Errorf("citation %d: got %+v, want %+v", i, citations[i], wantCitations[i])
		}
	}
}

func TestAssemble_MarkersMatchCitationOrder(t *testing.T) {
	store := newStore(t,
		docFixture{id: "p1", manual: "Alpha", emb: []float32{1}},
		docFixture{id: "p2", manual: "Beta", emb: []float32{1}},
		docFixture{id: "p3", manual: "Gamma", emb: []float32{1}},
		docFixture{id: "p4", manual: "Alpha", emb: []float32{1}},
	)
	ranked := make([]domret.ScoredDocument, store.Size())
	for i := range ranked {
		ranked[i] = domret.ScoredDocument{Document: store.At(store.Size() - 1 - i)}
	}

	a := NewAssembler("")
	text, citations := a.Assemble(ranked)

	if len(citations) != len(ranked) {
		t.Fatalf("expected %d citations, got %d", len(ranked), len(citations))
	}
	blocks := strings.Split(text, "\n\n")
	if len(blocks) != len(ranked) {
		t.Fatalf("expected %d passages, got %d", len(ranked), len(blocks))
	}
	for i, block := range blocks {
		header := a.Marker(i+1) + " (" + citations[i].Manual + ")"
		if !strings.HasPrefix(block, header+"\n") {
			t.Errorf("passage %d: expected header %q, got %q", i, header, block)
		}
		if !strings.HasSuffix(block, "passage "+citations[i].ID) {
			t.Errorf("passage %d: text does not belong to citation %s: %q", i, citations[i].ID, block)
		}
		if strings.Count(text, "passage "+citations[i].ID) != 1 {
			t.Errorf("passage %s should appear exactly once", citations[i].ID)
		}
	}
}

func TestAssembler_CustomLabel(t *testing.T) {
	a := NewAssembler("출처")
	if got := a.Marker(3); got != "[출처 3]" {
		t.Errorf("unexpected marker %q", got)
	}
}
