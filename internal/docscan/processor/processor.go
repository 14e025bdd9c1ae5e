package processor

import (
	"context"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
)

// Processor extracts identity fields from an in-memory document.
// Implementations must not retain doc.Data after Process returns.
type Processor interface {
	// CanProcess reports whether the processor understands the document's content type
	CanProcess(doc domain.Document) bool

	Process(ctx context.Context, doc domain.Document) (*domain.ExtractionResult, error)

	// Name returns the processor name for logging
	Name() string
}

// Registry holds all registered processors and dispatches to the right one
type Registry struct {
	processors []Processor
}

// NewRegistry creates a new processor registry
func NewRegistry(processors ...Processor) *Registry {
	return &Registry{processors: processors}
}

// FindProcessor returns the first processor that can handle the document
func (r *Registry) FindProcessor(doc domain.Document) Processor {
	for _, p := range r.processors {
		if p.CanProcess(doc) {
			return p
		}
	}
	return nil
}

// FindProcessors returns every processor that can handle the document, in
// registration order, so callers can fall through when one fails.
func (r *Registry) FindProcessors(doc domain.Document) []Processor {
	var result []Processor
	for _, p := range r.processors {
		if p.CanProcess(doc) {
			result = append(result, p)
		}
	}
	return result
}
