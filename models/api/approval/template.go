package approvalapimodels

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"task-approval-backend/models"
	apimodels "task-approval-backend/models/api"
	dbmodels "task-approval-backend/models/db"
)

type TemplateData struct {
	Name      string                    `json:"name"`
	Condition *models.ApprovalCondition `json:"condition"` // applicability of the whole template
	IsActive  bool                      `json:"is_active"`
	Stages    []TemplateStageData       `json:"stages"`
}

type TemplateStageData struct {
	LevelOrder    int                       `json:"level_order"`    // 1..n without gaps
	ApproverType  models.ApproverType       `json:"approver_type"`  // user, role, dynamic_role
	ApproverValue string                    `json:"approver_value"` // user id, role name or dynamic role
	Condition     *models.ApprovalCondition `json:"condition"`
}

func (r TemplateData) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.Wrap(models.ErrValidation, "template name is empty")
	}
	if len(r.Stages) == 0 {
		return errors.Wrap(models.ErrValidation, "template has no stages")
	}
	if err := validateCondition(r.Condition); err != nil {
		return err
	}
	levels := make([]int, 0, len(r.Stages))
	for _, stage := range r.Stages {
		if !stage.ApproverType.IsValid() {
			return errors.Wrapf(models.ErrValidation, "stage %v: unknown approver type %q", stage.LevelOrder, stage.ApproverType)
		}
		if strings.TrimSpace(stage.ApproverValue) == "" {
			return errors.Wrapf(models.ErrValidation, "stage %v: approver is empty", stage.LevelOrder)
		}
		if stage.ApproverType == models.ApproverTypeDynamicRole && !models.DynamicRole(stage.ApproverValue).IsValid() {
			return errors.Wrapf(models.ErrValidation, "stage %v: unknown dynamic role %q", stage.LevelOrder, stage.ApproverValue)
		}
		if err := validateCondition(stage.Condition); err != nil {
			return errors.Wrapf(err, "stage %v", stage.LevelOrder)
		}
		levels = append(levels, stage.LevelOrder)
	}
	sort.Ints(levels)
	for idx, level := range levels {
		if level != idx+1 {
			return errors.Wrap(models.ErrValidation, "stage levels must be unique and go from 1 without gaps")
		}
	}
	return nil
}

func validateCondition(cond *models.ApprovalCondition) error {
	if cond == nil {
		return nil
	}
	_, err := models.ParseApprovalCondition(cond.Marshal())
	return err
}

func ConditionToJSON(cond *models.ApprovalCondition) datatypes.JSON {
	if cond == nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(cond.Marshal())
}

func conditionFromJSON(raw datatypes.JSON) *models.ApprovalCondition {
	cond, err := models.ParseApprovalCondition(raw)
	if err != nil || cond.IsEmpty() {
		return nil
	}
	return &cond
}

type TemplateView struct {
	TemplateData
	ID string `json:"id"`
}

func TemplateConvert(rec dbmodels.ApprovalTemplate) TemplateView {
	result := TemplateView{
		TemplateData: TemplateData{
			Name:      rec.Name,
			Condition: conditionFromJSON(rec.Condition),
			IsActive:  rec.IsActive,
			Stages:    make([]TemplateStageData, 0, len(rec.Stages)),
		},
		ID: rec.ID,
	}
	for _, stage := range rec.Stages {
		result.Stages = append(result.Stages, TemplateStageData{
			LevelOrder:    stage.LevelOrder,
			ApproverType:  stage.ApproverType,
			ApproverValue: stage.ApproverValue,
			Condition:     conditionFromJSON(stage.Condition),
		})
	}
	return result
}

type TemplateFilter struct {
	apimodels.Pagination
	OnlyActive bool `json:"only_active"`
}
