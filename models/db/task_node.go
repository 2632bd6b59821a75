package dbmodels

import "time"

// TaskNode is one hand-off of a task. Rows are never updated or deleted.
type TaskNode struct {
	BaseModel
	TaskID      string `gorm:"type:varchar(36);index"`
	FromUserID  string `gorm:"type:varchar(36)"`
	FromUser    *User  `gorm:"foreignKey:FromUserID"`
	ToUserID    string `gorm:"type:varchar(36)"`
	ToUser      *User  `gorm:"foreignKey:ToUserID"`
	Comment     string
	ForwardedAt time.Time `gorm:"index"`
}
