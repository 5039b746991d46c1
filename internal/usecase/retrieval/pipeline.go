// Package retrieval ranks corpus passages against a query embedding and
// assembles them into an attributable prompt context.
//
// Everything here is a pure function of its inputs: no I/O, no locks, no
// shared mutable state. The corpus is read-only, so calls may run concurrently.
package retrieval

import (
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

// Pipeline composes Rank and Assembler.
type Pipeline struct {
	assembler *Assembler
}

// NewPipeline creates a retrieval pipeline.
func NewPipeline(assembler *Assembler) *Pipeline {
	if assembler == nil {
		assembler = NewAssembler("")
	}
	return &Pipeline{assembler: assembler}
}

// Retrieve ranks store against query and assembles the top k passages.
// The only failure is a dimension mismatch from Rank.
func (p *Pipeline) Retrieve(query []float32, store *corpus.Store, k int) (domret.Result, error) {
	ranked, err := Rank(query, store, k)
	if err != nil {
		return domret.Result{}, err
	}
	text, citations := p.assembler.Assemble(ranked)
	return domret.Result{
		Ranked:    ranked,
		Context:   text,
		Citations: citations,
	}, nil
}
