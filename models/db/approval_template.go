package dbmodels

import (
	"task-approval-backend/models"

	"gorm.io/datatypes"
)

type ApprovalTemplate struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);uniqueIndex"`
	Condition datatypes.JSON
	IsActive  bool
	Stages    []ApprovalTemplateStage `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

type ApprovalTemplateStage struct {
	BaseModel
	TemplateID    string `gorm:"type:varchar(36);index"`
	LevelOrder    int
	ApproverType  models.ApproverType `gorm:"type:varchar(20)"`
	ApproverValue string              `gorm:"type:varchar(255)"`
	Condition     datatypes.JSON
}
