package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Slot names an upload route of the intake wizard.
type Slot string

const (
	SlotIDDocument    Slot = "id-document"
	SlotBankStatement Slot = "bank-statement"
)

// DefaultMaxFileBytes is the per-file limit of both slots.
const DefaultMaxFileBytes = 4 << 20

// ParseSlot resolves a slot from the URL
func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotIDDocument, SlotBankStatement:
		return Slot(s), true
	}
	return "", false
}

// Uploader stores a file for a slot
type Uploader interface {
	Upload(ctx context.Context, slot Slot, f File) (*Uploaded, error)
}

// Handler serves the wizard's file uploads.
type Handler struct {
	uploader Uploader
	maxBytes int64
	log      *logger.Logger
}

// NewHandler creates a new upload handler
func NewHandler(uploader Uploader, maxBytes int64, log *logger.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Handler{uploader: uploader, maxBytes: maxBytes, log: log}
}

// RegisterRoutes mounts the upload routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/uploads/{slot}", h.Upload)
}

// Upload handles POST /uploads/{slot} with a multipart "file" field
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	slot, ok := ParseSlot(chi.URLParam(r, "slot"))
	if !ok {
		httputil.Error(w, apperrors.NotFound("upload slot"))
		return
	}

	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Error(w, tooLargeError(h.maxBytes))
			return
		}
		httputil.Error(w, apperrors.Validation(map[string]string{"file": "is required"}))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		httputil.Error(w, apperrors.BadRequest("could not read upload"))
		return
	}
	if int64(len(data)) > h.maxBytes {
		httputil.Error(w, tooLargeError(h.maxBytes))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		httputil.Error(w, apperrors.Validation(map[string]string{"file": "must be an image"}))
		return
	}

	uploaded, err := h.uploader.Upload(r.Context(), slot, File{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.log.Error().Err(err).Str("slot", string(slot)).Msg("upload failed")
		httputil.Error(w, apperrors.BadGateway("file upload", err))
		return
	}

	httputil.Created(w, uploaded)
}

func tooLargeError(limit int64) *apperrors.AppError {
	return apperrors.Validation(map[string]string{"file": "must be at most " + humanSize(limit)})
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
