package consumers

import (
	"context"
	"net/http"

	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
)

// QueueName is the scoring worker's queue on the lead exchange.
const QueueName = "scoring-worker.leads"

// LeadAnalyzer scores a stored lead
type LeadAnalyzer interface {
	Analyze(ctx context.Context, id string) (*repository.Customer, *scoring.Analysis, error)
}

// ScoringConsumer scores leads that arrive with a bank statement but no trust score
type ScoringConsumer struct {
	consumer *messaging.Consumer
	analyzer LeadAnalyzer
	logger   *logger.Logger
}

// NewScoringConsumer creates a new scoring consumer
func NewScoringConsumer(rmq *messaging.RabbitMQ, analyzer LeadAnalyzer, log *logger.Logger) (*ScoringConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, QueueName, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeLeadEvents, messaging.EventLeadCreated); err != nil {
		return nil, err
	}

	c := &ScoringConsumer{
		consumer: consumer,
		analyzer: analyzer,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventLeadCreated, c.handleLeadCreated)

	return c, nil
}

// Start starts consuming messages
func (c *ScoringConsumer) Start(ctx context.Context) (<-chan struct{}, error) {
	return c.consumer.Start(ctx)
}

func (c *ScoringConsumer) handleLeadCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.LeadCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	log := c.logger.WithCustomerID(data.CustomerID)
	if !data.NeedsScoring() {
		log.Debug().Msg("lead needs no scoring")
		return nil
	}

	_, analysis, err := c.analyzer.Analyze(ctx, data.CustomerID)
	if err != nil {
		if permanent(err) {
			log.Warn().Err(err).Msg("skipping lead scoring")
			return nil
		}
		return err
	}

	log.Info().Int("trust_score", analysis.TrustScore).Msg("scored new lead")
	return nil
}

// permanent reports errors a redelivery cannot fix: the lead is gone or
// has nothing to score.
func permanent(err error) bool {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.StatusCode == http.StatusNotFound || appErr.StatusCode == http.StatusBadRequest
}
