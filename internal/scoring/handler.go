package scoring

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Handler serves the public bank statement analysis endpoint.
type Handler struct {
	service *Service
	log     *logger.Logger
}

// NewHandler creates a new scoring handler
func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

// RegisterRoutes mounts the scoring routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze-bank-statement", h.AnalyzeBankStatement)
}

// AnalyzeRequest is the body of POST /analyze-bank-statement.
type AnalyzeRequest struct {
	BankStatementURL string `json:"bank_statement_url" validate:"required,url"`
}

// AnalyzeBankStatement handles POST /analyze-bank-statement
func (h *Handler) AnalyzeBankStatement(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req.BankStatementURL)
	if err != nil {
		h.log.Error().Err(err).Msg("error analyzing bank statement")
		httputil.Error(w, errors.BadGateway("bank statement analysis", err))
		return
	}

	httputil.JSON(w, http.StatusOK, analysis)
}
