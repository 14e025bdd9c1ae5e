package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rentalneeds/leadflow-backend/internal/leads/export"
	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/leads/service"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	service *service.LeadService
	logger  *logger.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(svc *service.LeadService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRoutes mounts the customer routes. Creation stays public for the
// intake wizard; every other route goes through adminOnly when it is set.
func (h *CustomerHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Group(func(r chi.Router) {
			if adminOnly != nil {
				r.Use(adminOnly)
			}
			r.Get("/", h.List)
			r.Get("/export", h.Export)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}", h.UpdateStatus)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/analyze", h.Analyze)
		})
	})
}

// UpdateStatusRequest is the body of PATCH /customers/{id}
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AnalyzeResponse is returned by POST /customers/{id}/analyze
type AnalyzeResponse struct {
	Customer *repository.Customer `json:"customer"`
	Analysis *scoring.Analysis    `json:"analysis"`
}

// Create handles POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCustomerInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	customer, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("error creating customer")
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, customer)
}

// List handles GET /customers?status=
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	counts := make(map[string]int, len(result.Counts))
	for status, n := range result.Counts {
		counts[string(status)] = n
	}

	httputil.JSONWithMeta(w, http.StatusOK, result.Customers, &httputil.Meta{
		Total:  int64(len(result.Customers)),
		Counts: counts,
	})
}

// Export handles GET /customers/export?status=
func (h *CustomerHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	data, err := export.CustomersXLSX(result.Customers)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate lead export")
		httputil.Error(w, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	_, _ = w.Write(data)
}

// Get handles GET /customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, customer)
}

// UpdateStatus handles PATCH /customers/{id}
func (h *CustomerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	changedBy := httputil.GetSubject(r.Context())
	customer, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, changedBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Analyze handles POST /customers/{id}/analyze
func (h *CustomerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	customer, analysis, err := h.service.Analyze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, AnalyzeResponse{Customer: customer, Analysis: analysis})
}
