package database

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
	}{
		{
			name:       "status check",
			err:        &pq.Error{Code: "23514", Constraint: "customers_status_valid"},
			wantStatus: http.StatusBadRequest,
			wantField:  "status",
		},
		{
			name:       "trust score range",
			err:        fmt.Errorf("insert: %w", &pq.Error{Code: "23514", Constraint: "customers_trust_score_range"}),
			wantStatus: http.StatusBadRequest,
			wantField:  "trust_score",
		},
		{
			name:       "not null",
			err:        &pq.Error{Code: "23502", Column: "first_name"},
			wantStatus: http.StatusBadRequest,
			wantField:  "first_name",
		},
		{
			name:       "unique",
			err:        &pq.Error{Code: "23505", Constraint: "customers_pkey"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "bad uuid",
			err:        &pq.Error{Code: "22P02"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapPQError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			if tt.wantField != "" {
				assert.Contains(t, appErr.Details, tt.wantField)
			}
		})
	}
}

func TestMapPQError_Unmapped(t *testing.T) {
	assert.Nil(t, MapPQError(fmt.Errorf("plain")))
	assert.Nil(t, MapPQError(&pq.Error{Code: "40001"}))
}
