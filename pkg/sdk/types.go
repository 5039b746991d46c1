package manualrag

// Document is one pre-embedded manual passage.
type Document struct {
	ID        string
	Manual    string
	Section   string
	Text      string
	Embedding []float32
}

// Citation points back at a passage used in the assembled context.
type Citation struct {
	ID      string
	Manual  string
	Section string
}

// Passage is a ranked document with its cosine similarity to the query.
type Passage struct {
	Citation
	Text  string
	Score float64
}

// Result is the outcome of a retrieval call. Passages, Citations and the
// source markers inside Context share the same order.
type Result struct {
	Context   string
	Passages  []Passage
	Citations []Citation
}

// Scores returns the passage scores in rank order.
func (r Result) Scores() []float64 {
	out := make([]float64, len(r.Passages))
	for i, p := range r.Passages {
		out[i] = p.Score
	}
	return out
}

// CorpusInfo describes the loaded corpus.
type CorpusInfo struct {
	Documents  int
	Dimensions int
}
