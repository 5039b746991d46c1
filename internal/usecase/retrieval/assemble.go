package retrieval

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/manualrag/internal/domain"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

// Assembler renders ranked passages into a prompt context block with
// numbered, manual-attributed source markers.
type Assembler struct {
	label string
}

// NewAssembler creates an Assembler. label prefixes each marker number
// ("Source" renders "[Source 1]"); empty falls back to domain.DefaultSourceLabel.
func NewAssembler(label string) *Assembler {
	if label == "" {
		label = domain.DefaultSourceLabel
	}
	return &Assembler{label: label}
}

// Assemble returns the context text and the citations in marker order.
// Passages are separated by a blank line:
//
//	[Source 1] (X1 Quick Start)
//	Run the automatic bed leveling routine...
//
//	[Source 2] (P2 Maintenance Guide)
//	...
func (a *Assembler) Assemble(ranked []domret.ScoredDocument) (string, []domret.Citation) {
	citations := make([]domret.Citation, 0, len(ranked))
	if len(ranked) == 0 {
		return "", citations
	}

	var b strings.Builder
	for i, sd := range ranked {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(a.Marker(i + 1))
		b.WriteString(" (")
		b.WriteString(sd.Document.Manual())
		b.WriteString(")\n")
		b.WriteString(sd.Document.Text())

		citations = append(citations, domret.CitationFor(sd.Document))
	}
	return b.String(), citations
}

// Marker returns the 1-based source marker for rank position n.
func (a *Assembler) Marker(n int) string {
	return "[" + a.label + " " + strconv.Itoa(n) + "]"
}
