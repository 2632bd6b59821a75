package dbmodels

import (
	"time"

	"task-approval-backend/models"
)

type TaskApprover struct {
	BaseModel
	TaskID         string                `gorm:"type:varchar(36);uniqueIndex:idx_task_level_approver"`
	Task           *Task                 `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	LevelOrder     int                   `gorm:"uniqueIndex:idx_task_level_approver"`
	ApproverUserID string                `gorm:"type:varchar(36);uniqueIndex:idx_task_level_approver;index"`
	ApproverUser   *User                 `gorm:"foreignKey:ApproverUserID"`
	Status         models.ApproverStatus `gorm:"type:varchar(20);index"`
	Comment        string
	ActionAt       *time.Time
}
