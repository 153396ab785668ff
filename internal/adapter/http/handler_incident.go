package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/policy"
	"github.com/opsboard/opsboard/internal/usecase"
	apperror "github.com/opsboard/opsboard/pkg/error"
)

// IncidentHandler handles HTTP requests for incidents
type IncidentHandler struct {
	incidentUseCase *usecase.IncidentUseCase
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(incidentUseCase *usecase.IncidentUseCase) *IncidentHandler {
	return &IncidentHandler{
		incidentUseCase: incidentUseCase,
	}
}

// RegisterRoutes registers incident routes on an authenticated subrouter
func (h *IncidentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/incidents", h.CreateIncident).Methods("POST")
	router.HandleFunc("/incidents", h.ListIncidents).Methods("GET")
	router.HandleFunc("/incidents/stats", h.GetIncidentStats).Methods("GET")
	router.HandleFunc("/incidents/{id}", h.GetIncident).Methods("GET")
	router.HandleFunc("/incidents/{id}", h.UpdateIncident).Methods("PUT")
}

// RegisterIngestRoutes registers the external ingestion route. The caller is
// expected to wrap the subrouter with the API key middleware; session auth
// and the policy engine play no part on this path.
func (h *IncidentHandler) RegisterIngestRoutes(router *mux.Router) {
	router.HandleFunc("/ingest/incidents", h.IngestIncident).Methods("POST")
}

// CreateIncident handles incident creation through the internal API
func (h *IncidentHandler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	incident, err := h.incidentUseCase.CreateIncident(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Incident created", incident)
}

// IngestIncident handles incident creation from external monitoring systems
func (h *IncidentHandler) IngestIncident(w http.ResponseWriter, r *http.Request) {
	var req usecase.IngestIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	incident, err := h.incidentUseCase.IngestIncident(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Incident ingested", incident)
}

// GetIncident handles retrieving a single incident
func (h *IncidentHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["id"]

	incident, err := h.incidentUseCase.GetIncident(r.Context(), incidentID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", incident)
}

// ListIncidents handles listing incidents with filters
func (h *IncidentHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := domain.IncidentFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s, err := domain.ParseIncidentStatus(status)
		if err != nil {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		filter.Status = &s
	}

	if tier := r.URL.Query().Get("tier"); tier != "" {
		tv, err := domain.ParseIncidentTier(tier)
		if err != nil {
			response.BadRequest(w, "Invalid tier filter")
			return
		}
		filter.Tier = &tv
	}

	if assigneeID := r.URL.Query().Get("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	incidents, total, err := h.incidentUseCase.ListIncidents(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", map[string]interface{}{
		"incidents": incidents,
		"total":     total,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
}

// UpdateIncident handles partial incident updates
func (h *IncidentHandler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	incidentID := mux.Vars(r)["id"]

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patch, err := decodeIncidentPatch(raw)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	incident, err := h.incidentUseCase.UpdateIncident(r.Context(), actor, incidentID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Incident updated", incident)
}

// GetIncidentStats handles incident statistics
func (h *IncidentHandler) GetIncidentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.incidentUseCase.GetIncidentStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", stats)
}

func decodeIncidentPatch(raw map[string]json.RawMessage) (usecase.IncidentPatch, error) {
	patch := usecase.IncidentPatch{}

	for _, field := range policy.IncidentUpdateFieldNames {
		value, present := raw[field]
		if !present {
			continue
		}
		patch.Fields = append(patch.Fields, field)

		if string(value) == "null" {
			continue
		}

		var err error
		switch field {
		case policy.FieldTitle:
			err = json.Unmarshal(value, &patch.Title)
		case policy.FieldDescription:
			err = json.Unmarshal(value, &patch.Description)
		case policy.FieldStatus:
			var s string
			if err = json.Unmarshal(value, &s); err == nil {
				var status domain.IncidentStatus
				status, err = domain.ParseIncidentStatus(s)
				if err == nil {
					patch.Status = &status
				}
			}
		case policy.FieldAssigneeID:
			err = json.Unmarshal(value, &patch.AssigneeID)
		}
		if err != nil {
			return usecase.IncidentPatch{}, apperror.NewBadRequest("Invalid value for field " + field)
		}
	}

	return patch, nil
}
