package events

import (
	"context"

	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
)

// Sink sends one event. *messaging.Publisher satisfies it.
type Sink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// LeadEventPublisher publishes lead lifecycle events. A nil publisher or a
// nil sink drops events, so services run without a broker in development.
// Publish failures are logged, never returned.
type LeadEventPublisher struct {
	sink   Sink
	logger *logger.Logger
}

// NewLeadEventPublisher declares the lead exchange and returns a publisher on it
func NewLeadEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*LeadEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeLeadEvents, "lead-service", log)
	if err != nil {
		return nil, err
	}
	return NewWithSink(publisher, log), nil
}

// NewWithSink wraps an existing sink
func NewWithSink(sink Sink, log *logger.Logger) *LeadEventPublisher {
	return &LeadEventPublisher{sink: sink, logger: log}
}

// PublishLeadCreated publishes a lead created event
func (p *LeadEventPublisher) PublishLeadCreated(ctx context.Context, c *repository.Customer) {
	p.publish(ctx, messaging.EventLeadCreated, c.ID, messaging.LeadCreatedEvent{
		CustomerID:       c.ID,
		Name:             c.FullName(),
		IDType:           c.IDType,
		Status:           string(c.Status),
		BankStatementURL: c.BankStatementURL,
		TrustScore:       c.TrustScore,
	})
}

// PublishStatusChanged publishes a lead status changed event
func (p *LeadEventPublisher) PublishStatusChanged(ctx context.Context, c *repository.Customer, old repository.Status, changedBy string) {
	p.publish(ctx, messaging.EventLeadStatusChanged, c.ID, messaging.LeadStatusChangedEvent{
		CustomerID: c.ID,
		OldStatus:  string(old),
		NewStatus:  string(c.Status),
		ChangedBy:  changedBy,
	})
}

// PublishScored publishes a lead scored event
func (p *LeadEventPublisher) PublishScored(ctx context.Context, customerID string, score int, recommendation string) {
	p.publish(ctx, messaging.EventLeadScored, customerID, messaging.LeadScoredEvent{
		CustomerID:     customerID,
		TrustScore:     score,
		Recommendation: recommendation,
	})
}

// PublishDeleted publishes a lead deleted event
func (p *LeadEventPublisher) PublishDeleted(ctx context.Context, customerID string) {
	p.publish(ctx, messaging.EventLeadDeleted, customerID, messaging.LeadDeletedEvent{CustomerID: customerID})
}

func (p *LeadEventPublisher) publish(ctx context.Context, eventType, customerID string, data interface{}) {
	if p == nil || p.sink == nil {
		return
	}
	if err := p.sink.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("customer_id", customerID).
			Msg("failed to publish lead event")
	}
}
