package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/policy"
	"github.com/opsboard/opsboard/internal/ports"
)

// CreateIncidentRequest represents the request to create an incident through
// the internal API.
type CreateIncidentRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Tier        domain.IncidentTier `json:"tier"`
	AssigneeID  *string             `json:"assignee_id,omitempty"`
}

// IngestIncidentRequest represents the payload of the external ingestion
// endpoint. It is authenticated by API key, not by session, and always
// produces an OPEN incident with no assignee.
type IngestIncidentRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Tier        domain.IncidentTier `json:"tier"`
}

// IncidentPatch is a partial incident update. Semantics mirror TaskPatch.
type IncidentPatch struct {
	Fields      []string
	Title       *string
	Description *string
	Status      *domain.IncidentStatus
	AssigneeID  *string
}

// Has reports whether the named field was present in the request.
func (p IncidentPatch) Has(field string) bool {
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// IncidentUseCase handles incident business logic.
type IncidentUseCase struct {
	incidentRepo  ports.IncidentRepository
	notifyService ports.NotificationService
	now           func() time.Time
}

// NewIncidentUseCase creates a new incident use case
func NewIncidentUseCase(incidentRepo ports.IncidentRepository, notifyService ports.NotificationService) *IncidentUseCase {
	return &IncidentUseCase{
		incidentRepo:  incidentRepo,
		notifyService: notifyService,
		now:           time.Now,
	}
}

// CreateIncident creates an incident through the internal API. Only admins
// and PMs may create incidents this way.
func (uc *IncidentUseCase) CreateIncident(ctx context.Context, actor domain.Actor, req CreateIncidentRequest) (*domain.Incident, error) {
	if !policy.CanCreateIncident(actor) {
		return nil, fmt.Errorf("role %s may not create incidents: %w", actor.Role, domain.ErrForbidden)
	}
	if req.Title == "" {
		return nil, domain.NewDomainError("title is required")
	}
	if req.Tier == "" {
		req.Tier = domain.IncidentTierMinor
	}
	if _, err := domain.ParseIncidentTier(string(req.Tier)); err != nil {
		return nil, err
	}

	incident := domain.NewIncident(req.Title, req.Description, req.Tier)
	incident.AssigneeID = req.AssigneeID

	if err := uc.incidentRepo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	if uc.notifyService != nil {
		_ = uc.notifyService.NotifyIncidentCreated(ctx, incident)
	}

	return incident, nil
}

// IngestIncident creates an incident from the external ingestion endpoint.
// The caller was authenticated by API key upstream; the policy engine is
// bypassed entirely on this path.
func (uc *IncidentUseCase) IngestIncident(ctx context.Context, req IngestIncidentRequest) (*domain.Incident, error) {
	if req.Title == "" {
		return nil, domain.NewDomainError("title is required")
	}
	if req.Tier == "" {
		req.Tier = domain.IncidentTierMinor
	}
	if _, err := domain.ParseIncidentTier(string(req.Tier)); err != nil {
		return nil, err
	}

	incident := domain.NewIncident(req.Title, req.Description, req.Tier)

	if err := uc.incidentRepo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to ingest incident: %w", err)
	}

	if uc.notifyService != nil {
		_ = uc.notifyService.NotifyIncidentCreated(ctx, incident)
	}

	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (uc *IncidentUseCase) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	if id == "" {
		return nil, domain.ErrIncidentNotFound
	}
	return uc.incidentRepo.FindByID(ctx, id)
}

// UpdateIncident applies a partial update on behalf of the actor. As with
// tasks, the policy decision happens before any write and a rejection leaves
// the incident untouched.
func (uc *IncidentUseCase) UpdateIncident(ctx context.Context, actor domain.Actor, id string, patch IncidentPatch) (*domain.Incident, error) {
	if len(patch.Fields) == 0 {
		return nil, domain.ErrNoValidUpdates
	}

	incident, err := uc.incidentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := policy.Snapshot{AssigneeID: incident.AssigneeID}
	if err := policy.IncidentUpdate(actor, snap, patch.Fields); err != nil {
		return nil, err
	}

	now := uc.now()
	prevStatus := incident.Status

	if patch.Has(policy.FieldTitle) && patch.Title != nil {
		incident.Title = *patch.Title
	}
	if patch.Has(policy.FieldDescription) && patch.Description != nil {
		incident.Description = *patch.Description
	}
	if patch.Has(policy.FieldAssigneeID) {
		incident.AssigneeID = patch.AssigneeID
	}
	if patch.Has(policy.FieldStatus) && patch.Status != nil {
		incident.TransitionStatus(*patch.Status, now)
	}
	incident.UpdatedAt = now

	if err := uc.incidentRepo.Update(ctx, incident); err != nil {
		return nil, err
	}

	if uc.notifyService != nil && incident.Status == domain.IncidentStatusResolved && prevStatus != domain.IncidentStatusResolved {
		_ = uc.notifyService.NotifyIncidentResolved(ctx, incident)
	}

	return incident, nil
}

// ListIncidents retrieves incidents matching the filter.
func (uc *IncidentUseCase) ListIncidents(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	incidents, err := uc.incidentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}

	count, err := uc.incidentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	return incidents, count, nil
}

// GetIncidentStats returns aggregate incident counts for the dashboard.
func (uc *IncidentUseCase) GetIncidentStats(ctx context.Context) (*domain.IncidentStats, error) {
	return uc.incidentRepo.Stats(ctx)
}
