package dbmodels

import "task-approval-backend/models"

type PushData struct {
	BaseModel
	UserID string          `gorm:"type:varchar(36);index:idx_user"`
	Code   models.PushCode `gorm:"type:varchar(255)"`
	TaskID string          `gorm:"type:varchar(36)"`
	Status string          `gorm:"type:varchar(30)"`
	Msg    string
	Title  string
}
