package incidents

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bissquit/incidentlog/internal/pkg/ctxlog"
	"github.com/bissquit/incidentlog/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Public error messages returned in {"error": ...} bodies.
const (
	MessageMissingFields = "Title, description, and severity are required."
	MessageInvalidInput  = "Invalid input or severity."
	MessageNotFound      = "Incident not found."
	MessageInvalidID     = "Invalid ID format."
)

var errorMapper = httputil.ErrorMapper{
	{Error: ErrMissingFields, Status: http.StatusBadRequest, Message: MessageMissingFields},
	{Error: ErrInvalidSeverity, Status: http.StatusBadRequest, Message: MessageInvalidInput},
	{Error: ErrInvalidInput, Status: http.StatusBadRequest, Message: MessageInvalidInput},
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound, Message: MessageNotFound},
	{Error: ErrInvalidID, Status: http.StatusBadRequest, Message: MessageInvalidID},
}

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service *Service
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all HTTP routes for the incidents module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/{id}", h.GetIncident)
		r.Delete("/{id}", h.DeleteIncident)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	ReportedAt  *time.Time `json:"reported_at,omitempty"`
}

// ToInput converts the request to service input.
func (r *CreateIncidentRequest) ToInput() CreateIncidentInput {
	return CreateIncidentInput{
		Title:       r.Title,
		Description: r.Description,
		Severity:    r.Severity,
		ReportedAt:  r.ReportedAt,
	}
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.service.ListIncidents(r.Context())
	if err != nil {
		errorMapper.Write(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, incidents)
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An empty body carries no fields at all.
		if errors.Is(err, io.EOF) {
			httputil.Error(w, http.StatusBadRequest, MessageMissingFields)
			return
		}
		ctxlog.FromContext(r.Context()).Debug("invalid incident body", "error", err)
		httputil.Error(w, http.StatusBadRequest, MessageInvalidInput)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), req.ToInput())
	if err != nil {
		errorMapper.Write(r.Context(), w, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("incident created",
		"incident_id", incident.ID,
		"severity", incident.Severity,
	)
	httputil.JSON(w, http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := ctxlog.With(r.Context(), "incident_id", id)

	incident, err := h.service.GetIncident(ctx, id)
	if err != nil {
		errorMapper.Write(ctx, w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, incident)
}

// DeleteIncident handles DELETE /incidents/{id} request.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := ctxlog.With(r.Context(), "incident_id", id)

	if err := h.service.DeleteIncident(ctx, id); err != nil {
		errorMapper.Write(ctx, w, err)
		return
	}

	ctxlog.FromContext(ctx).Info("incident deleted")
	w.WriteHeader(http.StatusNoContent)
}
