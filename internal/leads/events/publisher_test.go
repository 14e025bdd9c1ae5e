package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func TestLeadEventPublisher_Payloads(t *testing.T) {
	sink := testutil.NewMockPublisher()
	p := NewWithSink(sink, logger.Nop())
	ctx := context.Background()

	c := &repository.Customer{
		ID:               "c-1",
		FirstName:        "John",
		LastName:         "Smith",
		IDType:           "Driver License",
		Status:           repository.StatusApproved,
		BankStatementURL: testutil.PtrString("https://utfs.io/f/bank.png"),
	}

	p.PublishLeadCreated(ctx, c)
	p.PublishStatusChanged(ctx, c, repository.StatusNewLead, "admin")
	p.PublishScored(ctx, "c-1", 64, "Approve")
	p.PublishDeleted(ctx, "c-1")

	events := sink.Events()
	require.Len(t, events, 4)

	created, ok := events[0].Payload.(messaging.LeadCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.EventLeadCreated, events[0].Type)
	assert.Equal(t, "John Smith", created.Name)
	assert.True(t, created.NeedsScoring())

	changed := events[1].Payload.(messaging.LeadStatusChangedEvent)
	assert.Equal(t, "New Lead", changed.OldStatus)
	assert.Equal(t, "Approved", changed.NewStatus)
	assert.Equal(t, "admin", changed.ChangedBy)

	assert.Equal(t, messaging.EventLeadScored, events[2].Type)
	assert.Equal(t, messaging.EventLeadDeleted, events[3].Type)
}

func TestLeadEventPublisher_NilSafe(t *testing.T) {
	var p *LeadEventPublisher
	assert.NotPanics(t, func() { p.PublishDeleted(context.Background(), "x") })

	assert.NotPanics(t, func() {
		NewWithSink(nil, logger.Nop()).PublishDeleted(context.Background(), "x")
	})
}

func TestLeadEventPublisher_ErrorsAreSwallowed(t *testing.T) {
	sink := testutil.NewMockPublisher()
	sink.Err = errors.New("channel closed")
	p := NewWithSink(sink, logger.Nop())

	assert.NotPanics(t, func() { p.PublishDeleted(context.Background(), "x") })
	sink.AssertEventPublished(t, messaging.EventLeadDeleted)
}
