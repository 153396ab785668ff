package domain

import "fmt"

// Role represents a user's role in the system
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RolePM        Role = "PM"
	RoleBA        Role = "BA"
	RoleDeveloper Role = "DEVELOPER"
	RoleQA        Role = "QA"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RolePM, RoleBA, RoleDeveloper, RoleQA}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Actor is the authenticated caller of a request. It is derived from the
// session token per request and never persisted.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
