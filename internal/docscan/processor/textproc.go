package processor

import (
	"context"
	"strings"
	"time"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
)

// TextProcessor runs the field heuristic over text that was already OCR'd,
// typically by the browser.
type TextProcessor struct{}

// NewTextProcessor creates a new text processor
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

func (p *TextProcessor) Name() string { return "text" }

func (p *TextProcessor) CanProcess(doc domain.Document) bool {
	return doc.ContentType == "" || strings.HasPrefix(doc.ContentType, "text/plain")
}

func (p *TextProcessor) Process(_ context.Context, doc domain.Document) (*domain.ExtractionResult, error) {
	return Analyze(string(doc.Data), doc.Type, p.Name(), time.Now()), nil
}

// Analyze builds an extraction result from OCR text. Warnings list the fields
// that could not be read and any MRZ integrity problems.
func Analyze(text string, docType domain.DocumentType, processorName string, started time.Time) *domain.ExtractionResult {
	fields := ExtractFields(text, docType)

	var warnings []string
	for _, name := range fields.Missing() {
		warnings = append(warnings, name+" not found")
	}
	if docType.IsPassport() {
		if mrz := FindMRZ(splitLines(text)); mrz != nil {
			warnings = append(warnings, mrz.Warnings...)
		}
	}

	return &domain.ExtractionResult{
		DocumentType:     docType,
		Fields:           fields,
		RawText:          text,
		Warnings:         warnings,
		Processor:        processorName,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
}
