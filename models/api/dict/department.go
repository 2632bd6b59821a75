package dictapimodels

import (
	"strings"

	"github.com/pkg/errors"
	"task-approval-backend/lib/utils/helpers"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

type DepartmentData struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

type DepartmentView struct {
	DepartmentData
	ID string `json:"id"`
}

type DepartmentFind struct {
	Name string `json:"name"`
}

func (c DepartmentData) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.Wrap(models.ErrValidation, "department name is empty")
	}
	return nil
}

func DepartmentConvert(rec dbmodels.Department) DepartmentView {
	return DepartmentView{
		DepartmentData: DepartmentData{
			Name:     rec.Name,
			ParentID: helpers.PtrToStr(rec.ParentID),
		},
		ID: rec.ID,
	}
}

type DepartmentTreeItem struct {
	DepartmentView
	SubUnits []DepartmentTreeItem `json:"sub_units"`
}
