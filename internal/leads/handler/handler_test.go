package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rentalneeds/leadflow-backend/internal/leads/events"
	"github.com/rentalneeds/leadflow-backend/internal/leads/handler"
	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/leads/service"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

type customerResponse struct {
	Success bool                `json:"success"`
	Data    repository.Customer `json:"data"`
	Error   *httputil.ErrorBody `json:"error"`
}

type listResponse struct {
	Success bool                  `json:"success"`
	Data    []repository.Customer `json:"data"`
	Meta    httputil.Meta         `json:"meta"`
}

func newRouter(adminOnly func(http.Handler) http.Handler) (http.Handler, *testutil.MockPublisher) {
	sink := testutil.NewMockPublisher()
	svc := service.NewLeadService(
		repository.NewMemoryRepository(),
		nil,
		events.NewWithSink(sink, logger.Nop()),
		logger.Nop(),
	)
	r := chi.NewRouter()
	handler.NewCustomerHandler(svc, logger.Nop()).RegisterRoutes(r, adminOnly)
	return r, sink
}

func createLead(t *testing.T, router http.Handler, body map[string]any) repository.Customer {
	t.Helper()
	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/customers", body))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp customerResponse
	testutil.ParseJSONBody(t, rr, &resp)
	require.True(t, resp.Success)
	return resp.Data
}

func TestCustomerHandler_LeadLifecycle(t *testing.T) {
	router, sink := newRouter(nil)

	lead := createLead(t, router, map[string]any{
		"first_name":    "John",
		"last_name":     "Smith",
		"date_of_birth": "1990-07-03",
		"id_number":     "D1234567",
		"id_type":       "Driver License",
	})
	assert.Equal(t, repository.StatusNewLead, lead.Status)
	sink.AssertEventPublished(t, messaging.EventLeadCreated)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPatch, "/customers/"+lead.ID,
		map[string]string{"status": "Approved"}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var patched customerResponse
	testutil.ParseJSONBody(t, rr, &patched)
	assert.Equal(t, repository.StatusApproved, patched.Data.Status)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/customers?status=Approved", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list listResponse
	testutil.ParseJSONBody(t, rr, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, lead.ID, list.Data[0].ID)
	assert.Equal(t, int64(1), list.Meta.Total)
	assert.Equal(t, 1, list.Meta.Counts["Approved"])
	assert.Equal(t, 0, list.Meta.Counts["New Lead"])

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/customers/"+lead.ID, nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodDelete, "/customers/"+lead.ID, nil))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/customers/"+lead.ID, nil))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestCustomerHandler_Create_Validation(t *testing.T) {
	router, sink := newRouter(nil)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing names", map[string]any{"id_type": "Passport"}},
		{"bad status", map[string]any{"first_name": "A", "last_name": "B", "status": "Hot"}},
		{"score out of range", map[string]any{"first_name": "A", "last_name": "B", "trust_score": 140}},
		{"bad date", map[string]any{"first_name": "A", "last_name": "B", "date_of_birth": "12/05/1985"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/customers", tt.body))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)

			var resp customerResponse
			testutil.ParseJSONBody(t, rr, &resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		})
	}
	sink.AssertNoEventsPublished(t)
}

func TestCustomerHandler_UpdateStatus_Errors(t *testing.T) {
	router, _ := newRouter(nil)
	lead := createLead(t, router, map[string]any{"first_name": "A", "last_name": "B"})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPatch, "/customers/"+lead.ID,
		map[string]string{"status": "Sold"}))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPatch, "/customers/"+lead.ID,
		map[string]string{}))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPatch, "/customers/nope",
		map[string]string{"status": "Approved"}))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestCustomerHandler_Analyze_NoStatement(t *testing.T) {
	router, _ := newRouter(nil)
	lead := createLead(t, router, map[string]any{"first_name": "A", "last_name": "B"})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/customers/"+lead.ID+"/analyze", nil))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestCustomerHandler_Export(t *testing.T) {
	router, _ := newRouter(nil)
	createLead(t, router, map[string]any{"first_name": "Ahmed", "last_name": "Al Mansouri"})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/customers/export", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "leads-")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ahmed", rows[1][1])
}

func TestCustomerHandler_AdminOnly(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	router, _ := newRouter(deny)

	// the intake wizard stays public
	createLead(t, router, map[string]any{"first_name": "A", "last_name": "B"})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/customers", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
