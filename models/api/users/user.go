package usersapimodels

import (
	"strings"

	"github.com/pkg/errors"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/models"
	apimodels "task-approval-backend/models/api"
	dbmodels "task-approval-backend/models/db"
)

type UserData struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`          // ADMIN, MANAGER, USER or a business role
	DepartmentID string          `json:"department_id"` // optional
}

func (r UserData) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.Wrap(models.ErrValidation, "name is empty")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.Wrap(models.ErrValidation, "email is invalid")
	}
	if strings.TrimSpace(string(r.Role)) == "" {
		return errors.Wrap(models.ErrValidation, "role is empty")
	}
	return nil
}

type UserView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	RoleName     string          `json:"role_name"`
	DepartmentID string          `json:"department_id"`
	IsActive     bool            `json:"is_active"`
}

func UserConvert(rec dbmodels.User) UserView {
	return UserView{
		ID:           rec.ID,
		Name:         rec.GetFullName(),
		Email:        rec.Email,
		Role:         rec.Role,
		RoleName:     rec.Role.ToHuman(),
		DepartmentID: helpers.PtrToStr(rec.DepartmentID),
		IsActive:     rec.IsActive,
	}
}

type UserFilter struct {
	apimodels.Pagination
	Role         models.UserRole `json:"role"`
	DepartmentID string          `json:"department_id"`
	Search       string          `json:"search"`
	OnlyActive   bool            `json:"only_active"`
}

// UserShort is the reference to a user embedded in task views.
type UserShort struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func UserShortConvert(rec *dbmodels.User) *UserShort {
	if rec == nil {
		return nil
	}
	return &UserShort{ID: rec.ID, Name: rec.GetFullName()}
}
