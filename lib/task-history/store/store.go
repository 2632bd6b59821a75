package taskhistorystore

import (
	"gorm.io/gorm"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.TaskHistory) (id string, err error)
	List(taskID string) (list []dbmodels.TaskHistory, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TaskHistory) (id string, err error) {
	err = i.db.
		Omit("Actor").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(taskID string) (list []dbmodels.TaskHistory, err error) {
	list = []dbmodels.TaskHistory{}
	err = i.db.
		Preload("Actor").
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
