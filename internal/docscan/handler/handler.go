package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
	"github.com/rentalneeds/leadflow-backend/internal/docscan/service"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

const defaultMaxUpload = 4 << 20

// Handler handles HTTP requests for document extraction
type Handler struct {
	service   *service.Service
	log       *logger.Logger
	maxUpload int64
}

// NewHandler creates a new document extraction handler.
// maxUpload caps multipart image uploads in bytes.
func NewHandler(svc *service.Service, maxUpload int64, log *logger.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{
		service:   svc,
		log:       log,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes mounts the document routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/documents/extract-text", h.ExtractText)
	r.Post("/documents/extract", h.Extract)
	r.Get("/documents/extract/{jobId}", h.GetResult)
}

// ExtractTextRequest carries OCR text produced in the browser.
type ExtractTextRequest struct {
	Text         string `json:"text" validate:"max=65536"`
	DocumentType string `json:"document_type" validate:"required"`
}

// ExtractText handles POST /documents/extract-text
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	var req ExtractTextRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	docType, ok := domain.ParseDocumentType(req.DocumentType)
	if !ok {
		httputil.Error(w, invalidDocumentType())
		return
	}

	httputil.JSON(w, http.StatusOK, h.service.ExtractText(req.Text, docType))
}

// multipartOverhead leaves room for the form fields and part headers.
const multipartOverhead = 1 << 20

// Extract handles POST /documents/extract
// Accepts a multipart form with:
// - file: the document image
// - document_type: Driver License, Passport or State ID
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	// Same cap for the body and the in-memory form keeps every part off disk.
	limit := h.maxUpload + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return
	}

	docType, ok := domain.ParseDocumentType(r.FormValue("document_type"))
	if !ok {
		httputil.Error(w, invalidDocumentType())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file in request"))
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		httputil.Error(w, errors.BadRequest("file too large"))
		return
	}

	// Read into memory, never to disk
	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.BadRequest("failed to read uploaded file"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	job := h.service.StartExtraction(r.Context(), domain.Document{
		Data:        data,
		ContentType: contentType,
		Type:        docType,
	})
	httputil.Accepted(w, job)
}

// GetResult handles GET /documents/extract/{jobId}
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job := h.service.GetJob(jobID)
	if job == nil {
		httputil.Error(w, errors.NotFound("extraction job"))
		return
	}

	httputil.JSON(w, http.StatusOK, job)
}

func invalidDocumentType() *errors.AppError {
	names := make([]string, len(domain.DocumentTypes))
	for i, t := range domain.DocumentTypes {
		names[i] = string(t)
	}
	return errors.Validation(map[string]string{
		"document_type": "must be one of: " + strings.Join(names, ", "),
	})
}
