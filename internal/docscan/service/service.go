package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
	"github.com/rentalneeds/leadflow-backend/internal/docscan/processor"
	"github.com/rentalneeds/leadflow-backend/internal/docscan/storage"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Service orchestrates document extraction: dispatch → extract → zero the image
type Service struct {
	registry *processor.Registry
	storage  *storage.TempStorage
	log      *logger.Logger
}

// NewService creates a new document extraction service
func NewService(registry *processor.Registry, store *storage.TempStorage, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		storage:  store,
		log:      log,
	}
}

// ExtractText runs the field heuristic over OCR text synchronously.
// It never fails: unreadable fields come back empty.
func (s *Service) ExtractText(text string, docType domain.DocumentType) *domain.ExtractionResult {
	result := processor.Analyze(text, docType, "text", time.Now())

	s.log.Debug().
		Str("doc_type", string(docType)).
		Strs("missing", result.Fields.Missing()).
		Msg("extracted fields from text")

	return result
}

// StartExtraction registers a job and processes the document in the background.
// The job is returned immediately so the caller can poll for results.
// doc.Data is zeroed once processing finishes.
func (s *Service) StartExtraction(ctx context.Context, doc domain.Document) *domain.ExtractionJob {
	job := &domain.ExtractionJob{
		JobID:     storage.GenerateJobID(),
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now(),
	}
	s.storage.StoreJob(job)

	processors := s.registry.FindProcessors(doc)
	if len(processors) == 0 {
		storage.ZeroBytes(doc.Data)
		s.storage.UpdateJob(job.JobID, func(j *domain.ExtractionJob) {
			j.Status = domain.StatusFailed
			j.Error = fmt.Sprintf("no processor available for content type: %s", doc.ContentType)
		})
		return s.storage.GetJob(job.JobID)
	}

	// The request context ends with the response; processing must outlive it.
	go s.process(context.WithoutCancel(ctx), job.JobID, doc, processors)

	return s.storage.GetJob(job.JobID)
}

func (s *Service) process(ctx context.Context, jobID string, doc domain.Document, processors []processor.Processor) {
	log := s.log.WithJobID(jobID)

	var result *domain.ExtractionResult
	var lastErr error
	for _, proc := range processors {
		log.Info().
			Str("processor", proc.Name()).
			Str("doc_type", string(doc.Type)).
			Msg("trying document extraction")

		result, lastErr = proc.Process(ctx, doc)
		if lastErr == nil {
			break
		}
		log.Warn().Err(lastErr).Str("processor", proc.Name()).Msg("processor failed, trying next")
	}

	storage.ZeroBytes(doc.Data)

	if lastErr != nil {
		s.storage.UpdateJob(jobID, func(j *domain.ExtractionJob) {
			j.Status = domain.StatusFailed
			j.Error = lastErr.Error()
		})
		log.Error().Err(lastErr).Msg("all processors failed")
		return
	}

	s.storage.UpdateJob(jobID, func(j *domain.ExtractionJob) {
		j.Status = domain.StatusCompleted
		j.Result = result
	})

	log.Info().
		Str("processor", result.Processor).
		Int("missing_fields", len(result.Fields.Missing())).
		Int64("duration_ms", result.ProcessingTimeMs).
		Msg("document extraction completed")
}

// GetJob retrieves an extraction job by ID
func (s *Service) GetJob(jobID string) *domain.ExtractionJob {
	return s.storage.GetJob(jobID)
}
