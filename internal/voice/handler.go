package voice

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
)

// Handler serves the voice widget configuration.
type Handler struct {
	widget WidgetConfig
}

// NewHandler creates a new voice handler
func NewHandler(cfg config.VoiceConfig) *Handler {
	return &Handler{widget: NewWidgetConfig(cfg)}
}

// RegisterRoutes mounts the voice routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/assistant", h.Assistant)
}

// Assistant handles GET /voice/assistant
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.widget)
}
