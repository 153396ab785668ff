package policy

import "github.com/opsboard/opsboard/internal/domain"

// Field names accepted by the update endpoints. These match the JSON keys of
// the partial request bodies.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDueDate     = "due_date"
	FieldStartDate   = "start_date"
	FieldAssigneeID  = "assignee_id"
	FieldTeamID      = "team_id"
)

// TaskUpdateFieldNames lists every field a task update request may carry.
var TaskUpdateFieldNames = []string{
	FieldTitle, FieldDescription, FieldStatus, FieldPriority,
	FieldDueDate, FieldStartDate, FieldAssigneeID, FieldTeamID,
}

// IncidentUpdateFieldNames lists every field an incident update request may
// carry.
var IncidentUpdateFieldNames = []string{
	FieldTitle, FieldDescription, FieldAssigneeID, FieldStatus,
}

var allTaskFields = Fields(TaskUpdateFieldNames...)

// taskUpdatePolicy: admins, PMs and BAs are general editors; the creator has
// full access to their own task; the assignee may only move status. The
// assignee_id and priority overrides tighten whichever rule matched.
var taskUpdatePolicy = Policy{
	Rules: []Rule{
		{Roles: []domain.Role{domain.RoleAdmin, domain.RolePM}, Fields: allTaskFields},
		{Roles: []domain.Role{domain.RoleBA}, Fields: allTaskFields},
		{Relation: RelCreator, Fields: allTaskFields},
		{Relation: RelAssignee, Fields: Fields(FieldStatus)},
	},
	Overrides: []Override{
		{Field: FieldAssigneeID, Roles: []domain.Role{domain.RoleAdmin, domain.RolePM}, Creator: true},
		{Field: FieldPriority, Roles: []domain.Role{domain.RoleAdmin, domain.RolePM, domain.RoleBA}, Creator: true},
	},
}

// incidentUpdatePolicy: admins and PMs have full access; the assignee and QA
// may only move status.
var incidentUpdatePolicy = Policy{
	Rules: []Rule{
		{Roles: []domain.Role{domain.RoleAdmin, domain.RolePM}, Fields: Fields(IncidentUpdateFieldNames...)},
		{Relation: RelAssignee, Fields: Fields(FieldStatus)},
		{Roles: []domain.Role{domain.RoleQA}, Fields: Fields(FieldStatus)},
	},
}

// TaskUpdate evaluates a task update request against the task policy table.
func TaskUpdate(actor domain.Actor, snap Snapshot, requested []string) error {
	return taskUpdatePolicy.Evaluate(actor, snap, requested)
}

// IncidentUpdate evaluates an incident update request against the incident
// policy table.
func IncidentUpdate(actor domain.Actor, snap Snapshot, requested []string) error {
	return incidentUpdatePolicy.Evaluate(actor, snap, requested)
}

// CanDeleteTask reports whether the actor may delete a task. Deletion ignores
// creator/assignee relationships entirely.
func CanDeleteTask(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin || actor.Role == domain.RolePM
}

// CanCreateIncident reports whether the actor may create an incident through
// the internal API. The external ingestion endpoint bypasses this check; it
// authenticates with an API key instead of a session.
func CanCreateIncident(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin || actor.Role == domain.RolePM
}

// CanDeleteAttachment reports whether the actor may delete an attachment:
// the uploader, any admin, or the current assignee of the parent entity.
// Comment creation deliberately has no counterpart here; any authenticated
// caller may comment.
func CanDeleteAttachment(actor domain.Actor, uploaderID string, parentAssigneeID *string) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if actor.ID == uploaderID {
		return true
	}
	return parentAssigneeID != nil && actor.ID == *parentAssigneeID
}
