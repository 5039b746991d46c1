package corpus

import (
	"fmt"
	"slices"
)

// Document is one embedded manual passage (immutable value object).
type Document struct {
	id        string
	manual    string
	section   string
	text      string
	embedding []float32
}

// NewDocument validates and creates a Document. Text and embedding are required;
// the embedding is copied so later changes to the caller's slice do not leak in.
func NewDocument(id, manual, section, text string, embedding []float32) (Document, error) {
	if text == "" {
		return Document{}, fmt.Errorf("text is required")
	}
	if len(embedding) == 0 {
		return Document{}, fmt.Errorf("embedding is required")
	}
	return Document{
		id:        id,
		manual:    manual,
		section:   section,
		text:      text,
		embedding: slices.Clone(embedding),
	}, nil
}

// ID returns the document identifier, the logical key for citations.
func (d *Document) ID() string { return d.id }

// Manual returns the source manual name.
func (d *Document) Manual() string { return d.manual }

// Section returns the manual section, possibly empty.
func (d *Document) Section() string { return d.section }

// Text returns the passage body.
func (d *Document) Text() string { return d.text }

// Embedding returns the precomputed embedding. Callers must not modify it.
func (d *Document) Embedding() []float32 { return d.embedding }

// Dimensions returns the embedding length.
func (d *Document) Dimensions() int { return len(d.embedding) }
