package scoring

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func newTestRouter(analyzer Analyzer) http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(analyzer, nil, logger.Nop()), logger.Nop()).RegisterRoutes(r)
	return r
}

func TestHandler_AnalyzeBankStatement(t *testing.T) {
	analysis, err := ParseReply(sampleReply)
	require.NoError(t, err)
	router := newTestRouter(&fakeAnalyzer{analysis: analysis})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/analyze-bank-statement",
		map[string]string{"bank_statement_url": "https://utfs.io/f/statement.png"}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, float64(62), resp.Data["trustScore"])
	assert.Equal(t, "Closing balance around AED 12,400", resp.Data["accountBalance"])
}

func TestHandler_AnalyzeBankStatement_Validation(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{})

	for name, body := range map[string]any{
		"missing url": map[string]string{},
		"not a url":   map[string]string{"bank_statement_url": "statement.png"},
	} {
		t.Run(name, func(t *testing.T) {
			rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/analyze-bank-statement", body))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestHandler_AnalyzeBankStatement_UpstreamFailure(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{err: ErrAnalysisFailed})

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/analyze-bank-statement",
		map[string]string{"bank_statement_url": "https://utfs.io/f/statement.png"}))
	testutil.AssertStatus(t, rr, http.StatusBadGateway)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "UPSTREAM_ERROR", resp.Error.Code)
}
