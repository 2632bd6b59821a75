package models

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID string
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}
