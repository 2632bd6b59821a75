package dbmodels

import (
	"strings"

	"github.com/pkg/errors"
	"task-approval-backend/models"
)

type Department struct {
	BaseModel
	Name     string  `gorm:"type:varchar(255)"`
	ParentID *string `gorm:"type:varchar(36);index"`
}

func (d *Department) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.Wrap(models.ErrValidation, "department name is empty")
	}
	if d.ParentID != nil && *d.ParentID == d.ID && d.ID != "" {
		return errors.Wrap(models.ErrValidation, "department cannot be its own parent")
	}
	return nil
}
