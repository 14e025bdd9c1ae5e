package consumers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

type fakeAnalyzer struct {
	err   error
	calls []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, id string) (*repository.Customer, *scoring.Analysis, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, nil, f.err
	}
	return &repository.Customer{ID: id}, &scoring.Analysis{TrustScore: 55}, nil
}

func leadCreated(t *testing.T, data messaging.LeadCreatedEvent) *messaging.Event {
	t.Helper()
	event, err := messaging.NewEvent(messaging.EventLeadCreated, "lead-service", "corr-1", data)
	require.NoError(t, err)
	return event
}

func TestScoringConsumer_HandleLeadCreated(t *testing.T) {
	statement := testutil.PtrString("https://utfs.io/f/bank.png")

	tests := []struct {
		name      string
		data      messaging.LeadCreatedEvent
		err       error
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "statement without score",
			data:      messaging.LeadCreatedEvent{CustomerID: "c-1", BankStatementURL: statement},
			wantCalls: 1,
		},
		{
			name: "already scored",
			data: messaging.LeadCreatedEvent{CustomerID: "c-1", BankStatementURL: statement, TrustScore: testutil.PtrInt(40)},
		},
		{
			name: "no statement",
			data: messaging.LeadCreatedEvent{CustomerID: "c-1"},
		},
		{
			name:      "lead deleted meanwhile",
			data:      messaging.LeadCreatedEvent{CustomerID: "c-1", BankStatementURL: statement},
			err:       errors.NotFound("customer"),
			wantCalls: 1,
		},
		{
			name:      "vision model down",
			data:      messaging.LeadCreatedEvent{CustomerID: "c-1", BankStatementURL: statement},
			err:       errors.BadGateway("bank statement analysis", scoring.ErrAnalysisFailed),
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{err: tt.err}
			c := &ScoringConsumer{analyzer: analyzer, logger: logger.Nop()}

			err := c.handleLeadCreated(context.Background(), leadCreated(t, tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, analyzer.calls, tt.wantCalls)
		})
	}
}

func TestScoringConsumer_MalformedPayload(t *testing.T) {
	c := &ScoringConsumer{analyzer: &fakeAnalyzer{}, logger: logger.Nop()}
	event := &messaging.Event{Type: messaging.EventLeadCreated, Data: []byte(`"nope"`)}

	assert.Error(t, c.handleLeadCreated(context.Background(), event))
}
