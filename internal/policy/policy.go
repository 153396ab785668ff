// Package policy is the authorization decision engine consulted by every
// mutating usecase. Decisions are computed from declarative rule tables: rows
// of (role set or relationship to the entity) mapped to the fields that row
// may modify, evaluated in order with first match winning, followed by
// per-field overrides. A request containing any field outside the resolved
// set is rejected in full; there is no partial apply.
package policy

import (
	"fmt"

	"github.com/opsboard/opsboard/internal/domain"
)

// Snapshot carries the persisted entity state the rules need. CreatorID is
// empty for entities without a creator (incidents created via ingestion).
type Snapshot struct {
	CreatorID  string
	AssigneeID *string
}

// Relation is a relationship predicate between the caller and the entity.
type Relation int

const (
	RelNone Relation = iota
	RelCreator
	RelAssignee
)

func (rel Relation) holds(actor domain.Actor, snap Snapshot) bool {
	switch rel {
	case RelCreator:
		return snap.CreatorID != "" && actor.ID == snap.CreatorID
	case RelAssignee:
		return snap.AssigneeID != nil && actor.ID == *snap.AssigneeID
	}
	return false
}

// FieldSet is the set of field names a matched rule permits.
type FieldSet map[string]struct{}

// Fields builds a FieldSet from field names.
func Fields(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Contains reports whether the set permits the named field.
func (fs FieldSet) Contains(name string) bool {
	_, ok := fs[name]
	return ok
}

// Rule grants a field set to callers matching either a role set or a
// relationship to the entity. Exactly one of Roles/Relation is populated
// per rule.
type Rule struct {
	Roles    []domain.Role
	Relation Relation
	Fields   FieldSet
}

func (r Rule) matches(actor domain.Actor, snap Snapshot) bool {
	if len(r.Roles) > 0 {
		return roleIn(actor.Role, r.Roles)
	}
	return r.Relation.holds(actor, snap)
}

// Override restricts a single field to a role set and optionally the entity
// creator, regardless of which rule matched. Overrides tighten; they never
// grant access a matched rule did not already give.
type Override struct {
	Field   string
	Roles   []domain.Role
	Creator bool
}

func (o Override) permits(actor domain.Actor, snap Snapshot) bool {
	if roleIn(actor.Role, o.Roles) {
		return true
	}
	return o.Creator && snap.CreatorID != "" && actor.ID == snap.CreatorID
}

// Policy is an ordered rule table plus field overrides for one entity type.
type Policy struct {
	Rules     []Rule
	Overrides []Override
}

// AllowedFields resolves the field set granted to the actor, or false when
// no rule matches.
func (p Policy) AllowedFields(actor domain.Actor, snap Snapshot) (FieldSet, bool) {
	for _, rule := range p.Rules {
		if rule.matches(actor, snap) {
			return rule.Fields, true
		}
	}
	return nil, false
}

// Evaluate checks every requested field against the resolved rule and the
// overrides. Any disallowed field rejects the whole request with
// domain.ErrForbidden; a caller matching no rule is likewise rejected.
func (p Policy) Evaluate(actor domain.Actor, snap Snapshot, requested []string) error {
	allowed, ok := p.AllowedFields(actor, snap)
	if !ok {
		return fmt.Errorf("role %s may not modify this entity: %w", actor.Role, domain.ErrForbidden)
	}

	for _, field := range requested {
		if !allowed.Contains(field) {
			return fmt.Errorf("field %q not permitted for role %s: %w", field, actor.Role, domain.ErrForbidden)
		}
	}

	for _, o := range p.Overrides {
		if !fieldRequested(requested, o.Field) {
			continue
		}
		if !o.permits(actor, snap) {
			return fmt.Errorf("field %q not permitted for role %s: %w", o.Field, actor.Role, domain.ErrForbidden)
		}
	}

	return nil
}

func roleIn(role domain.Role, set []domain.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

func fieldRequested(requested []string, name string) bool {
	for _, f := range requested {
		if f == name {
			return true
		}
	}
	return false
}
