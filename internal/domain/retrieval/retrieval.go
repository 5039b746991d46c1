// Package retrieval holds the per-call values produced by ranking and context assembly.
package retrieval

import "github.com/kailas-cloud/manualrag/internal/domain/corpus"

// ScoredDocument pairs a corpus document with its similarity to the query.
type ScoredDocument struct {
	Document *corpus.Document
	Score    float64
}

// Citation points back at a passage used to ground an answer.
type Citation struct {
	ID      string `json:"id"`
	Manual  string `json:"manual"`
	Section string `json:"section"`
}

// CitationFor builds the citation for a document.
func CitationFor(d *corpus.Document) Citation {
	return Citation{ID: d.ID(), Manual: d.Manual(), Section: d.Section()}
}

// Result is the outcome of one retrieval call. Ranked, Citations and the
// markers inside Context share the same order.
type Result struct {
	Ranked    []ScoredDocument
	Context   string
	Citations []Citation
}

// Scores returns the ranked scores in rank order.
func (r *Result) Scores() []float64 {
	scores := make([]float64, len(r.Ranked))
	for i, sd := range r.Ranked {
		scores[i] = sd.Score
	}
	return scores
}

// Empty reports whether retrieval found no passages.
func (r *Result) Empty() bool { return len(r.Ranked) == 0 }
