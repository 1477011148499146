package models

import "github.com/google/uuid"

// AuthContext carries the authenticated ticketer through the components that
// act on their behalf. It is passed explicitly, never read from globals.
type AuthContext struct {
	UserID uuid.UUID `json:"user_id"`
	Phone  string    `json:"phone"`
	Roles  []Role    `json:"roles"`
	Token  string    `json:"-"`
}

// CanSellWalkIn reports whether any held role may use the walk-in counter
func (a AuthContext) CanSellWalkIn() bool {
	for _, r := range a.Roles {
		if r.CanSellWalkIn() {
			return true
		}
	}
	return false
}
