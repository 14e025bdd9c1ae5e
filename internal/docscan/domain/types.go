package domain

import (
	"strings"
	"time"
)

// DocumentType is the identity document family the applicant selected.
// The values are the ones persisted on the customer record.
type DocumentType string

const (
	DocumentTypeDriverLicense DocumentType = "Driver License"
	DocumentTypePassport      DocumentType = "Passport"
	DocumentTypeStateID       DocumentType = "State ID"
)

// DocumentTypes lists the accepted document types in display order.
var DocumentTypes = []DocumentType{DocumentTypeDriverLicense, DocumentTypePassport, DocumentTypeStateID}

// ParseDocumentType accepts either the display value or its snake_case code.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "driver license", "driver_license":
		return DocumentTypeDriverLicense, true
	case "passport":
		return DocumentTypePassport, true
	case "state id", "state_id":
		return DocumentTypeStateID, true
	default:
		return "", false
	}
}

// IsPassport reports whether the document carries a passport-style MRZ.
func (d DocumentType) IsPassport() bool {
	return d == DocumentTypePassport
}

// ExtractionStatus represents the processing state of an extraction job
type ExtractionStatus string

const (
	StatusPending    ExtractionStatus = "pending"
	StatusProcessing ExtractionStatus = "processing"
	StatusCompleted  ExtractionStatus = "completed"
	StatusFailed     ExtractionStatus = "failed"
)

// ExtractedFields is the best-effort identity record read from a document.
// Any field may be empty; the applicant reviews and corrects it before saving.
type ExtractedFields struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	DateOfBirth string       `json:"date_of_birth"` // YYYY-MM-DD
	IDNumber    string       `json:"id_number"`
	IDType      DocumentType `json:"id_type"`
}

// Missing returns the names of the identity fields that could not be read.
func (f ExtractedFields) Missing() []string {
	var missing []string
	if f.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if f.LastName == "" {
		missing = append(missing, "last_name")
	}
	if f.DateOfBirth == "" {
		missing = append(missing, "date_of_birth")
	}
	if f.IDNumber == "" {
		missing = append(missing, "id_number")
	}
	return missing
}

// Document is an uploaded scan or its OCR text, held only in memory.
type Document struct {
	Data        []byte
	ContentType string
	Type        DocumentType
}

// ExtractionResult is the outcome of running one processor over a document
type ExtractionResult struct {
	DocumentType     DocumentType    `json:"document_type"`
	Fields           ExtractedFields `json:"fields"`
	RawText          string          `json:"raw_text,omitempty"`
	Warnings         []string        `json:"warnings,omitempty"`
	Processor        string          `json:"processor"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// ExtractionJob tracks an asynchronous image extraction
type ExtractionJob struct {
	JobID     string            `json:"job_id"`
	Status    ExtractionStatus  `json:"status"`
	Result    *ExtractionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
