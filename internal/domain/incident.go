package domain

import (
	"time"

	"github.com/google/uuid"
)

// IncidentStatus represents the status of an incident
type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "OPEN"
	IncidentStatusInvestigating IncidentStatus = "INVESTIGATING"
	IncidentStatusResolved      IncidentStatus = "RESOLVED"
	IncidentStatusClosed        IncidentStatus = "CLOSED"
)

// ParseIncidentStatus validates a raw status string.
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	switch IncidentStatus(s) {
	case IncidentStatusOpen, IncidentStatusInvestigating, IncidentStatusResolved, IncidentStatusClosed:
		return IncidentStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// IncidentTier represents the severity tier of an incident
type IncidentTier string

const (
	IncidentTierCritical IncidentTier = "CRITICAL"
	IncidentTierMajor    IncidentTier = "MAJOR"
	IncidentTierMinor    IncidentTier = "MINOR"
)

// ParseIncidentTier validates a raw tier string.
func ParseIncidentTier(s string) (IncidentTier, error) {
	switch IncidentTier(s) {
	case IncidentTierCritical, IncidentTierMajor, IncidentTierMinor:
		return IncidentTier(s), nil
	}
	return "", ErrInvalidTier
}

// Incident represents a tracked production incident
type Incident struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Tier        IncidentTier   `json:"tier"`
	AssigneeID  *string        `json:"assignee_id,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewIncident creates a new incident in OPEN status with no assignee. Both
// the internal creation path and the external ingestion path start here.
func NewIncident(title, description string, tier IncidentTier) *Incident {
	now := time.Now()
	return &Incident{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      IncidentStatusOpen,
		Tier:        tier,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionStatus moves the incident to the given status. Entering RESOLVED
// overwrites ResolvedAt even when it was already set, so re-resolving an
// incident records the latest resolution time. Entering CLOSED stamps
// ClosedAt. Regressing to OPEN or INVESTIGATING does not clear either
// timestamp; the stored values record the most recent resolution/closure.
func (i *Incident) TransitionStatus(next IncidentStatus, now time.Time) {
	i.Status = next

	switch next {
	case IncidentStatusResolved:
		ts := now
		i.ResolvedAt = &ts
	case IncidentStatusClosed:
		ts := now
		i.ClosedAt = &ts
	}
}

// IncidentFilter represents filters for listing incidents
type IncidentFilter struct {
	Status     *IncidentStatus `json:"status,omitempty"`
	Tier       *IncidentTier   `json:"tier,omitempty"`
	AssigneeID *string         `json:"assignee_id,omitempty"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// IncidentStats aggregates incident counts for the dashboard.
type IncidentStats struct {
	Total    int                    `json:"total"`
	ByStatus map[IncidentStatus]int `json:"by_status"`
	ByTier   map[IncidentTier]int   `json:"by_tier"`
}
