package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles an actor can hold. The zero value is not a
// valid role and is denied by every permission check.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleOwner
	RoleViewer
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleOwner, RoleViewer}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleOwner:
		return "OWNER"
	case RoleViewer:
		return "VIEWER"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleViewer:
		return true
	default:
		return false
	}
}

// ParseRole converts the wire representation of a role. Matching is case-insensitive.
func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "OWNER":
		return RoleOwner, nil
	case "VIEWER":
		return RoleViewer, nil
	default:
		return RoleUnknown, Invalid(fmt.Sprintf("unknown role %q", value))
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, Invalid("cannot encode unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
