package retrieval

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/manualrag/internal/domain"
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
	"github.com/kailas-cloud/manualrag/internal/domain/vector"
)

// Rank scores every document in the store against query by cosine similarity
// and returns the top k, best first. Equal scores keep corpus order.
// k <= 0 yields an empty result; k beyond the corpus size yields the whole corpus.
func Rank(query []float32, store *corpus.Store, k int) ([]domret.ScoredDocument, error) {
	if store.Size() > 0 && len(query) != store.Dimensions() {
		return nil, fmt.Errorf("rank: %w", domain.NewDimensionMismatch(store.Dimensions(), len(query)))
	}
	if k <= 0 || store.Size() == 0 {
		return []domret.ScoredDocument{}, nil
	}

	scored := make([]domret.ScoredDocument, store.Size())
	for i := range scored {
		doc := store.At(i)
		score, err := vector.CosineSimilarity(query, doc.Embedding())
		if err != nil {
			return nil, fmt.Errorf("rank document %d: %w", i, err)
		}
		scored[i] = domret.ScoredDocument{Document: doc, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scoreLess(scored[j].Score, scored[i].Score)
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// scoreLess orders scores ascending with NaN below every number, so a
// descending sort always sinks NaN to the tail.
func scoreLess(a, b float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return false
	case aNaN:
		return true
	case bNaN:
		return false
	}
	return a < b
}
