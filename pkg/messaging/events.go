package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventLeadCreated       = "lead.created"
	EventLeadStatusChanged = "lead.status.changed"
	EventLeadScored        = "lead.scored"
	EventLeadDeleted       = "lead.deleted"
)

// Exchange names
const (
	ExchangeLeadEvents = "lead.events"
	ExchangeDeadLetter = "dlx.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// LeadCreatedEvent is published when the wizard submits a new lead
type LeadCreatedEvent struct {
	CustomerID       string  `json:"customer_id"`
	Name             string  `json:"name"`
	IDType           string  `json:"id_type"`
	Status           string  `json:"status"`
	BankStatementURL *string `json:"bank_statement_url,omitempty"`
	TrustScore       *int    `json:"trust_score,omitempty"`
}

// NeedsScoring reports whether the lead arrived with a statement but no score.
func (e *LeadCreatedEvent) NeedsScoring() bool {
	return e.TrustScore == nil && e.BankStatementURL != nil && *e.BankStatementURL != ""
}

// LeadStatusChangedEvent is published when an operator moves a lead through the pipeline
type LeadStatusChangedEvent struct {
	CustomerID string `json:"customer_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ChangedBy  string `json:"changed_by,omitempty"`
}

// LeadScoredEvent is published after a trust score is stored
type LeadScoredEvent struct {
	CustomerID     string `json:"customer_id"`
	TrustScore     int    `json:"trust_score"`
	Recommendation string `json:"recommendation"`
}

// LeadDeletedEvent is published when a lead is removed
type LeadDeletedEvent struct {
	CustomerID string `json:"customer_id"`
}
