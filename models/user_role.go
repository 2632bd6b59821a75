package models

type UserRole string

const (
	AdminRole   UserRole = "ADMIN"
	ManagerRole UserRole = "MANAGER"
	UserRoleStd UserRole = "USER"
)

var roleHumanName = map[UserRole]string{
	AdminRole:   "Administrator",
	ManagerRole: "Manager",
	UserRoleStd: "User",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

// IsElevated reports whether the role may look at approvals of other users.
func (r UserRole) IsElevated() bool {
	return r == AdminRole || r == ManagerRole
}

func (r UserRole) IsAdmin() bool {
	return r == AdminRole
}

const SystemUser = "system"
