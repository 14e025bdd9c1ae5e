package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// Handler handles admin endpoints
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new admin handler
func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{service: svc, logger: log}
}

// RegisterRoutes mounts the admin routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", h.Login)
}

// Login handles POST /admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, token)
}

// RequireAdmin rejects requests without a valid admin bearer token and
// stores the token subject on the context. It passes everything through
// when no admin credentials are configured.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	if !h.service.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.Error(w, errors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
			return
		}

		subject, err := h.service.Authenticate(parts[1])
		if err != nil {
			h.logger.Debug().Err(err).Msg("token validation failed")
			httputil.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(httputil.WithSubject(r.Context(), subject)))
	})
}
