package taskcommentstore

import (
	"gorm.io/gorm"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Comment) (*dbmodels.Comment, error)
	List(taskID string) (list []dbmodels.Comment, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Comment) (*dbmodels.Comment, error) {
	err := i.db.
		Omit("User").
		Create(&rec).
		Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(taskID string) (list []dbmodels.Comment, err error) {
	list = []dbmodels.Comment{}
	err = i.db.
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
