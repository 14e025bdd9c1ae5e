package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
	"github.com/rentalneeds/leadflow-backend/internal/leads/events"
	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	apperrors "github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Repository is the customer store
type Repository interface {
	Create(ctx context.Context, c *repository.Customer) error
	List(ctx context.Context, params repository.ListParams) ([]*repository.Customer, error)
	CountByStatus(ctx context.Context) (map[repository.Status]int, error)
	GetByID(ctx context.Context, id string) (*repository.Customer, error)
	UpdateStatus(ctx context.Context, id string, status repository.Status) (*repository.Customer, repository.Status, error)
	UpdateScore(ctx context.Context, id string, score int, details string) (*repository.Customer, error)
	Delete(ctx context.Context, id string) error
}

// Scorer produces a trust score for a bank statement image
type Scorer interface {
	Analyze(ctx context.Context, imageRef string) (*scoring.Analysis, error)
}

// CreateCustomerInput is the wizard's submission
type CreateCustomerInput struct {
	FirstName         string  `json:"first_name" validate:"required,max=100"`
	LastName          string  `json:"last_name" validate:"required,max=100"`
	DateOfBirth       string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	IDNumber          string  `json:"id_number" validate:"max=64"`
	IDType            string  `json:"id_type"`
	IDImageURL        *string `json:"id_image_url" validate:"omitempty,url"`
	BankStatementURL  *string `json:"bank_statement_url" validate:"omitempty,url"`
	Status            string  `json:"status"`
	TrustScore        *int    `json:"trust_score" validate:"omitempty,min=0,max=100"`
	TrustScoreDetails *string `json:"trust_score_details"`
}

// ListResult is a filtered customer list with pipeline counts
type ListResult struct {
	Customers []*repository.Customer
	Counts    map[repository.Status]int
}

// LeadService implements the lead pipeline
type LeadService struct {
	repo      Repository
	scorer    Scorer
	publisher *events.LeadEventPublisher
	log       *logger.Logger
}

// NewLeadService creates a new lead service. publisher may be nil.
func NewLeadService(repo Repository, scorer Scorer, publisher *events.LeadEventPublisher, log *logger.Logger) *LeadService {
	return &LeadService{repo: repo, scorer: scorer, publisher: publisher, log: log}
}

// Create stores a new lead and announces it
func (s *LeadService) Create(ctx context.Context, in CreateCustomerInput) (*repository.Customer, error) {
	status := repository.StatusNewLead
	if in.Status != "" {
		status = repository.Status(in.Status)
		if !status.Valid() {
			return nil, invalidStatus()
		}
	}

	idType := strings.TrimSpace(in.IDType)
	if idType != "" {
		dt, ok := domain.ParseDocumentType(idType)
		if !ok {
			return nil, apperrors.Validation(map[string]string{"id_type": "must be one of: Driver License, Passport, State ID"})
		}
		idType = string(dt)
	}

	c := &repository.Customer{
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		DateOfBirth:       in.DateOfBirth,
		IDNumber:          strings.TrimSpace(in.IDNumber),
		IDType:            idType,
		IDImageURL:        in.IDImageURL,
		BankStatementURL:  in.BankStatementURL,
		Status:            status,
		TrustScore:        in.TrustScore,
		TrustScoreDetails: in.TrustScoreDetails,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.WithCustomerID(c.ID).Info().Str("status", string(c.Status)).Msg("lead created")
	s.publisher.PublishLeadCreated(ctx, c)
	return c, nil
}

// List returns leads newest first, optionally filtered by status, with per-status counts
func (s *LeadService) List(ctx context.Context, status string) (*ListResult, error) {
	var params repository.ListParams
	if status != "" {
		st := repository.Status(status)
		if !st.Valid() {
			return nil, invalidStatus()
		}
		params.Status = &st
	}

	customers, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{Customers: customers, Counts: counts}, nil
}

// Get returns one lead
func (s *LeadService) Get(ctx context.Context, id string) (*repository.Customer, error) {
	if !validID(id) {
		return nil, apperrors.NotFound("customer")
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves a lead to a new pipeline status
func (s *LeadService) UpdateStatus(ctx context.Context, id, status, changedBy string) (*repository.Customer, error) {
	st := repository.Status(status)
	if !st.Valid() {
		return nil, invalidStatus()
	}
	if !validID(id) {
		return nil, apperrors.NotFound("customer")
	}

	c, old, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}

	s.log.WithCustomerID(id).Info().
		Str("old_status", string(old)).
		Str("new_status", string(st)).
		Msg("lead status updated")
	if old != st {
		s.publisher.PublishStatusChanged(ctx, c, old, changedBy)
	}
	return c, nil
}

// Delete removes a lead permanently
func (s *LeadService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NotFound("customer")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithCustomerID(id).Info().Msg("lead deleted")
	s.publisher.PublishDeleted(ctx, id)
	return nil
}

// Analyze scores the lead's stored bank statement and saves the result
func (s *LeadService) Analyze(ctx context.Context, id string) (*repository.Customer, *scoring.Analysis, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if c.BankStatementURL == nil || *c.BankStatementURL == "" {
		return nil, nil, apperrors.BadRequest("customer has no bank statement")
	}
	if s.scorer == nil {
		return nil, nil, apperrors.BadGateway("bank statement analysis", errors.New("scoring is not configured"))
	}

	analysis, err := s.scorer.Analyze(ctx, *c.BankStatementURL)
	if err != nil {
		s.log.WithCustomerID(id).Error().Err(err).Msg("trust score analysis failed")
		return nil, nil, apperrors.BadGateway("bank statement analysis", err)
	}

	updated, err := s.repo.UpdateScore(ctx, id, analysis.TrustScore, analysis.Details())
	if err != nil {
		return nil, nil, fmt.Errorf("store trust score: %w", err)
	}

	s.log.WithCustomerID(id).Info().Int("trust_score", analysis.TrustScore).Msg("lead scored")
	s.publisher.PublishScored(ctx, id, analysis.TrustScore, analysis.Recommendation)
	return updated, analysis, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func invalidStatus() *apperrors.AppError {
	return apperrors.Validation(map[string]string{"status": "must be one of: " + repository.StatusList()})
}
