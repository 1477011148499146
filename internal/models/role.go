package models

import "fmt"

// Role is a platform role carried in access tokens
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
	RoleOperator Role = "operator"
	RoleTicketer Role = "ticketer"
	RoleCustomer Role = "customer"
)

// ParseRole converts a token claim into a Role
func ParseRole(value string) (Role, error) {
	role := Role(value)
	switch role {
	case RoleAdmin, RoleDriver, RoleOperator, RoleTicketer, RoleCustomer:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role: %q", value)
	}
}

// ParseRoles converts token claims, skipping roles this service does not know
func ParseRoles(values []string) []Role {
	roles := make([]Role, 0, len(values))
	for _, v := range values {
		if role, err := ParseRole(v); err == nil {
			roles = append(roles, role)
		}
	}
	return roles
}

// CanSellWalkIn reports whether the role may operate the walk-in counter
func (r Role) CanSellWalkIn() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleTicketer:
		return true
	case RoleDriver, RoleCustomer:
		return false
	default:
		return false
	}
}

