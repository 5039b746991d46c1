// Package corpus holds the pre-embedded manual passages served by retrieval.
//
// A Store is built once at startup and never mutated afterwards, so it can be
// shared by any number of concurrent retrieval calls without locking.
package corpus

import (
	"slices"

	"github.com/kailas-cloud/manualrag/internal/domain"
)

// Store is an ordered, read-only collection of documents with uniform
// embedding dimensionality.
type Store struct {
	docs []Document
	dim  int
}

// New builds a Store from already-validated documents. Every document must
// have the same embedding length as the first one.
func New(docs []Document) (*Store, error) {
	s := &Store{docs: slices.Clone(docs)}
	for i := range s.docs {
		d := &s.docs[i]
		if i == 0 {
			s.dim = d.Dimensions()
			continue
		}
		if d.Dimensions() != s.dim {
			return nil, &LoadError{
				Index:  i,
				ID:     d.ID(),
				Reason: dimensionReason(s.dim, d.Dimensions()),
				Err:    domain.NewDimensionMismatch(s.dim, d.Dimensions()),
			}
		}
	}
	return s, nil
}

// Size returns the number of documents.
func (s *Store) Size() int { return len(s.docs) }

// Dimensions returns the corpus-wide embedding length (0 for an empty corpus).
func (s *Store) Dimensions() int { return s.dim }

// Documents returns the documents in corpus order. The returned slice is a
// copy; the documents themselves are immutable.
func (s *Store) Documents() []Document { return slices.Clone(s.docs) }

// At returns the document at position i.
func (s *Store) At(i int) *Document { return &s.docs[i] }
