package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/manualrag/internal/domain"
)

// LoadError describes why a corpus source was rejected. It unwraps to
// domain.ErrCorpusLoad and, when present, to the underlying cause.
type LoadError struct {
	Index  int // record position, -1 when the failure is not tied to a record
	ID     string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := domain.ErrCorpusLoad.Error()
	if e.Index >= 0 {
		msg += fmt.Sprintf(": document %d", e.Index)
		if e.ID != "" {
			msg += fmt.Sprintf(" (%s)", e.ID)
		}
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrCorpusLoad}
	}
	return []error{domain.ErrCorpusLoad, e.Err}
}

// record is the persisted shape of a document. Pointers distinguish a missing
// field from an empty one.
type record struct {
	ID        string    `json:"id"`
	Manual    string    `json:"manual"`
	Section   string    `json:"section"`
	Text      *string   `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Load parses a JSON array of document records. Any malformed record fails the
// whole load: a ragged corpus cannot be scored consistently.
func Load(r io.Reader) (*Store, error) {
	var records []record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, &LoadError{Index: -1, Reason: "decode", Err: err}
	}
	if dec.More() {
		return nil, &LoadError{Index: -1, Reason: "trailing data after document array"}
	}

	docs := make([]Document, 0, len(records))
	for i, rec := range records {
		if rec.Text == nil || *rec.Text == "" {
			return nil, &LoadError{Index: i, ID: rec.ID, Reason: "missing text"}
		}
		if rec.Embedding == nil {
			return nil, &LoadError{Index: i, ID: rec.ID, Reason: "missing embedding"}
		}
		if len(docs) > 0 && len(rec.Embedding) != docs[0].Dimensions() {
			return nil, &LoadError{
				Index:  i,
				ID:     rec.ID,
				Reason: dimensionReason(docs[0].Dimensions(), len(rec.Embedding)),
				Err:    domain.NewDimensionMismatch(docs[0].Dimensions(), len(rec.Embedding)),
			}
		}
		doc, err := NewDocument(rec.ID, rec.Manual, rec.Section, *rec.Text, rec.Embedding)
		if err != nil {
			return nil, &LoadError{Index: i, ID: rec.ID, Err: err}
		}
		docs = append(docs, doc)
	}

	return New(docs)
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Index: -1, Reason: "open " + path, Err: err}
	}
	defer func() { _ = f.Close() }()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

func dimensionReason(want, got int) string {
	return fmt.Sprintf("embedding has %d dimensions, corpus expects %d", got, want)
}
