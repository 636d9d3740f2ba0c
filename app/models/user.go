package models

// Actor is the authenticated caller as asserted by the identity provider
type Actor struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Roles     []Role `json:"roles"`
}

// HasRole reports whether the actor carries role.
func (a *Actor) HasRole(role Role) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (a *Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}
