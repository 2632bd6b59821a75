package tasknodestore

import (
	"gorm.io/gorm"
	dbmodels "task-approval-backend/models/db"
)

// Provider is the forwarding ledger. Nodes can only be appended.
type Provider interface {
	Append(rec dbmodels.TaskNode) (id string, err error)
	ListByTask(taskID string) (list []dbmodels.TaskNode, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Append(rec dbmodels.TaskNode) (id string, err error) {
	err = i.db.
		Omit("FromUser", "ToUser").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListByTask(taskID string) (list []dbmodels.TaskNode, err error) {
	list = []dbmodels.TaskNode{}
	err = i.db.
		Preload("FromUser").
		Preload("ToUser").
		Where("task_id = ?", taskID).
		Order("forwarded_at, created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
