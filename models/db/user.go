package dbmodels

import (
	"strings"

	"github.com/pkg/errors"
	"task-approval-backend/models"
)

type User struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255)"`
	Email        string          `gorm:"type:varchar(255);uniqueIndex"`
	Role         models.UserRole `gorm:"type:varchar(50);index"`
	DepartmentID *string         `gorm:"type:varchar(36);index"`
	Department   *Department     `gorm:"foreignKey:DepartmentID"`
	IsActive     bool            `gorm:"index"`
}

func (u User) GetFullName() string {
	return strings.TrimSpace(u.Name)
}

func (u User) InDepartment(departmentID string) bool {
	return departmentID != "" && u.DepartmentID != nil && *u.DepartmentID == departmentID
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.Wrap(models.ErrValidation, "user name is empty")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.Wrap(models.ErrValidation, "user email is invalid")
	}
	if u.Role == "" {
		return errors.Wrap(models.ErrValidation, "user role is empty")
	}
	return nil
}
